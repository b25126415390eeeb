package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event is a single calendar entry for ICS rendering.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders events into an iCalendar payload that attendees can
// import into their own calendar clients.
type ICSExporter struct {
	productID string
}

// NewICSExporter constructs an ICS exporter. The product id identifies the
// generator in the PRODID property.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//conference-api//schedule//EN"
	}
	return &ICSExporter{productID: productID}
}

// Render produces an ICS document containing one VEVENT per event. Events
// without a start time are skipped; an event without an end time gets a one
// hour default duration.
func (e *ICSExporter) Render(calendarName string, events []Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	now := time.Now().UTC()
	for i, event := range events {
		if event.Start.IsZero() {
			continue
		}
		uid := event.UID
		if uid == "" {
			uid = fmt.Sprintf("event-%d@conference-api", i)
		}
		end := event.End
		if end.IsZero() || !end.After(event.Start) {
			end = event.Start.Add(time.Hour)
		}

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetStartAt(event.Start)
		ve.SetEndAt(end)
		ve.SetSummary(event.Summary)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.URL != "" {
			ve.SetURL(event.URL)
		}
	}

	return []byte(cal.Serialize()), nil
}
