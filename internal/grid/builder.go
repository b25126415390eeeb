// Package grid transforms a conference's flat time-slot records into the
// day-partitioned, time-ordered view model the schedule tables render.
// Everything in this package is a pure function over already-fetched data:
// no I/O, no clock, no shared state, and identical input always produces
// identical output.
package grid

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
)

// DaySchedule is one calendar date of a conference with its ordered items.
type DaySchedule struct {
	DayNumber int            `json:"day_number"`
	Date      string         `json:"date"`
	Title     string         `json:"title"`
	Items     []ScheduleItem `json:"items"`
}

// ScheduleItem is one flattened grid-row entry: a time slot combined with one
// of its rooms, or the bare slot when it has no rooms.
type ScheduleItem struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Speaker        string              `json:"speaker,omitempty"`
	Location       string              `json:"location"`
	StartTime      string              `json:"start_time,omitempty"`
	EndTime        string              `json:"end_time,omitempty"`
	TimeRange      string              `json:"time_range"`
	Category       models.SlotCategory `json:"category"`
	Moderator      string              `json:"moderator,omitempty"`
	RoomName       string              `json:"room_name,omitempty"`
	RoomIdentifier string              `json:"room_identifier,omitempty"`
	OnlineURL      string              `json:"online_url,omitempty"`
}

// Builder converts a conference schedule graph into DaySchedule view models.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder constructs a Builder. Logging is diagnostic only and never
// affects output.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// BuildDays groups the conference's time slots by calendar date and expands
// each slot into display-ready items. Days are numbered 1-based over the
// sorted distinct set of observed dates; they are intentionally NOT derived
// from the conference's declared start/end range (see Conference.DayDates for
// that policy).
func (b *Builder) BuildDays(conference models.Conference) []DaySchedule {
	if len(conference.Schedules) == 0 {
		return []DaySchedule{}
	}

	groups := make(map[string][]models.TimeSlot)
	for _, slot := range conference.Schedules {
		key := dateKey(slot.Date, b.logger)
		groups[key] = append(groups[key], slot)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	// ISO date keys sort chronologically under plain string ordering.
	sort.Strings(keys)

	days := make([]DaySchedule, 0, len(keys))
	for i, key := range keys {
		day := DaySchedule{
			DayNumber: i + 1,
			Date:      key,
			Title:     dayTitle(i+1, key),
			Items:     expandSlots(groups[key]),
		}
		days = append(days, day)
	}

	b.logger.Debug("built day schedules",
		zap.String("conference_id", conference.ID),
		zap.Int("slots", len(conference.Schedules)),
		zap.Int("days", len(days)),
	)
	return days
}

// dateKey truncates a stored date value to its YYYY-MM-DD component. The key
// is always the leading calendar date as stored; parsing only validates the
// value, so an offset suffix never shifts a slot onto a neighbouring day.
// Malformed values degrade to the first ten characters of the raw string;
// grouping never fails on bad input.
func dateKey(raw string, logger *zap.Logger) string {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return trimmed[:10]
		}
	}
	if len(trimmed) >= 10 {
		if _, err := time.Parse("2006-01-02", trimmed[:10]); err != nil {
			logger.Warn("unparseable time slot date, using truncated raw value", zap.String("date", raw))
		}
		return trimmed[:10]
	}
	logger.Warn("unparseable time slot date, using raw value", zap.String("date", raw))
	return trimmed
}

// dayTitle renders "Day N: D Month" anchored to UTC midnight of the stored
// date so a client timezone can never shift the displayed day.
func dayTitle(dayNumber int, key string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return fmt.Sprintf("Day %d: %s", dayNumber, key)
	}
	t = t.UTC()
	return fmt.Sprintf("Day %d: %d %s", dayNumber, t.Day(), t.Month().String())
}

func expandSlots(slots []models.TimeSlot) []ScheduleItem {
	items := make([]ScheduleItem, 0, len(slots))
	for _, slot := range slots {
		if len(slot.Rooms) == 0 {
			items = append(items, bareSlotItem(slot))
			continue
		}
		for _, room := range slot.Rooms {
			items = append(items, roomItem(slot, room))
		}
	}

	// Stable: items without a start time keep their relative input order at
	// the end of the day.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].StartTime, items[j].StartTime
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})
	return items
}

// roomItem flattens a slot/room pair. The compound id keeps items unique even
// if the same slot appears twice due to upstream duplication.
func roomItem(slot models.TimeSlot, room models.Room) ScheduleItem {
	item := ScheduleItem{
		ID:          fmt.Sprintf("%s-%s", slot.ID, room.ID),
		Title:       "Schedule Item",
		Description: slot.Notes,
		Category:    slot.Category,
		RoomName:    room.Name,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
	}

	if room.Description != nil && strings.TrimSpace(*room.Description) != "" {
		item.Title = *room.Description
	} else if strings.TrimSpace(room.Name) != "" {
		item.Title = room.Name
	}

	// The speaker label carries the track's topic, not a person. A human
	// moderator, when present, lives inside the room description.
	if room.Track != nil {
		item.Speaker = room.Track.Name
	}

	if room.Description != nil {
		if moderator, ok := ExtractModerator(*room.Description); ok {
			item.Moderator = moderator
		}
	}

	if room.Identifier != nil {
		item.RoomIdentifier = *room.Identifier
	}

	if room.OnlineMeetingURL != nil && *room.OnlineMeetingURL != "" {
		item.OnlineURL = *room.OnlineMeetingURL
		item.Location = *room.OnlineMeetingURL
	} else if room.Type == models.RoomMain {
		item.Location = "Main Room"
	} else {
		item.Location = room.Name
	}

	if room.StartTime != nil && *room.StartTime != "" {
		item.StartTime = *room.StartTime
	}
	if room.EndTime != nil && *room.EndTime != "" {
		item.EndTime = *room.EndTime
	}

	item.TimeRange = timeRange(item.StartTime, item.EndTime)
	return item
}

// bareSlotItem synthesizes a single item for slots carrying no rooms.
func bareSlotItem(slot models.TimeSlot) ScheduleItem {
	item := ScheduleItem{
		ID:          slot.ID,
		Title:       bareSlotTitle(slot),
		Description: slot.Notes,
		Category:    slot.Category,
		Location:    "All Areas",
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
	}
	item.TimeRange = timeRange(item.StartTime, item.EndTime)
	return item
}

func bareSlotTitle(slot models.TimeSlot) string {
	notes := strings.ToLower(slot.Notes)
	switch slot.Category {
	case models.SlotBreak:
		if strings.Contains(notes, "coffee") {
			return "Coffee Break"
		}
		return "Break"
	case models.SlotOneDayActivity:
		if strings.Contains(notes, "tour") {
			return "One Day Tour"
		}
		return "Activity"
	case models.SlotTalk:
		return "Conference Session"
	default:
		return "Schedule Item"
	}
}

func timeRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("%s - %s", start, end)
	case start != "":
		return fmt.Sprintf("From %s", start)
	case end != "":
		return fmt.Sprintf("Until %s", end)
	default:
		return ""
	}
}
