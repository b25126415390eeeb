package grid

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodsa/conference-api/internal/models"
)

func strPtr(v string) *string {
	return &v
}

func mainRoom(id, name string) models.Room {
	return models.Room{ID: id, Name: name, Type: models.RoomMain}
}

func TestBuildDaysEmptyConference(t *testing.T) {
	builder := NewBuilder(nil)
	days := builder.BuildDays(models.Conference{ID: "conf-1"})
	require.NotNil(t, days)
	assert.Len(t, days, 0)
}

func TestBuildDaysGroupsAndNumbersDays(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", EndTime: "10:00", Category: models.SlotTalk,
				Rooms: []models.Room{mainRoom("room-1", "Main Hall")}},
			{ID: "slot-2", Date: "2025-11-23", StartTime: "10:00", EndTime: "11:00", Category: models.SlotTalk,
				Rooms: []models.Room{mainRoom("room-2", "Main Hall")}},
			{ID: "slot-3", Date: "2025-11-24", StartTime: "09:00", EndTime: "10:00", Category: models.SlotTalk,
				Rooms: []models.Room{mainRoom("room-3", "Main Hall")}},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 2)

	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, "2025-11-23", days[0].Date)
	assert.Equal(t, "Day 1: 23 November", days[0].Title)
	assert.Len(t, days[0].Items, 2)

	assert.Equal(t, 2, days[1].DayNumber)
	assert.Equal(t, "Day 2: 24 November", days[1].Title)
	assert.Len(t, days[1].Items, 1)
}

func TestBuildDaysNumbersFromObservedDatesOnly(t *testing.T) {
	// The declared range is three days, but only two carry slots. Day numbers
	// come from the observed dates, not the conference range.
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-11-25", StartTime: "09:00", Category: models.SlotTalk},
			{ID: "slot-2", Date: "2025-11-23", StartTime: "09:00", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-11-23", days[0].Date)
	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, "2025-11-25", days[1].Date)
	assert.Equal(t, 2, days[1].DayNumber)
}

func TestBuildDaysGroupsTimestampsByDateComponent(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-11-23T08:00:00Z", StartTime: "08:00", Category: models.SlotTalk},
			{ID: "slot-2", Date: "2025-11-23T19:30:00Z", StartTime: "19:30", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-11-23", days[0].Date)
	assert.Len(t, days[0].Items, 2)
}

func TestBuildDaysOffsetTimestampKeepsStoredDate(t *testing.T) {
	// An evening slot stored with a negative UTC offset still belongs to the
	// calendar day it was entered on; normalizing to UTC would shift it.
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-11-23T20:00:00-07:00", StartTime: "20:00", Category: models.SlotTalk},
			{ID: "slot-2", Date: "2025-11-23T02:00:00+09:00", StartTime: "02:00", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-11-23", days[0].Date)
	assert.Equal(t, "Day 1: 23 November", days[0].Title)
	assert.Len(t, days[0].Items, 2)
}

func TestBuildDaysMalformedDateDegradesToTruncation(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-13-99garbage", StartTime: "09:00", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-13-99", days[0].Date)
	assert.Equal(t, "Day 1: 2025-13-99", days[0].Title)
}

func TestBuildDaysOneItemPerRoomWithCompoundIDs(t *testing.T) {
	builder := NewBuilder(nil)
	slot := models.TimeSlot{
		ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", EndTime: "10:30", Category: models.SlotTalk,
		Rooms: []models.Room{
			mainRoom("room-1", "Main Hall"),
			{ID: "room-2", Name: "Room A", Type: models.RoomParallel},
			{ID: "room-3", Name: "Room B", Type: models.RoomParallel},
		},
	}

	days := builder.BuildDays(models.Conference{ID: "conf-1", Schedules: []models.TimeSlot{slot}})
	require.Len(t, days, 1)
	require.Len(t, days[0].Items, 3)

	seen := map[string]bool{}
	for _, item := range days[0].Items {
		seen[item.ID] = true
	}
	for _, roomID := range []string{"room-1", "room-2", "room-3"} {
		assert.True(t, seen[fmt.Sprintf("slot-1-%s", roomID)])
	}
}

func TestBuildDaysRoomItemResolution(t *testing.T) {
	builder := NewBuilder(nil)
	slot := models.TimeSlot{
		ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", EndTime: "10:30",
		Category: models.SlotTalk, Notes: "Opening keynote block",
		Rooms: []models.Room{
			{
				ID: "room-1", Name: "Room A", Type: models.RoomParallel,
				Description: strPtr("Moderator: Dr. Jane Doe, Track Chair"),
				Identifier:  strPtr("Session A"),
				Track:       &models.Track{ID: "track-1", Name: "AI & Cybernetics"},
				StartTime:   strPtr("09:15"),
			},
		},
	}

	days := builder.BuildDays(models.Conference{ID: "conf-1", Schedules: []models.TimeSlot{slot}})
	require.Len(t, days, 1)
	require.Len(t, days[0].Items, 1)
	item := days[0].Items[0]

	// Title resolves from the room description before the room name.
	assert.Equal(t, "Moderator: Dr. Jane Doe, Track Chair", item.Title)
	assert.Equal(t, "Opening keynote block", item.Description)
	// Speaker carries the track topic, never a person.
	assert.Equal(t, "AI & Cybernetics", item.Speaker)
	assert.Equal(t, "Dr. Jane Doe", item.Moderator)
	assert.Equal(t, "Room A", item.RoomName)
	assert.Equal(t, "Session A", item.RoomIdentifier)
	// Room start override wins; the slot end time remains.
	assert.Equal(t, "09:15", item.StartTime)
	assert.Equal(t, "10:30", item.EndTime)
	assert.Equal(t, "09:15 - 10:30", item.TimeRange)
	// No online URL: parallel rooms locate at their own name.
	assert.Equal(t, "Room A", item.Location)
}

func TestBuildDaysLocationResolution(t *testing.T) {
	builder := NewBuilder(nil)
	slot := models.TimeSlot{
		ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", Category: models.SlotTalk,
		Rooms: []models.Room{
			{ID: "room-1", Name: "Auditorium", Type: models.RoomMain},
			{ID: "room-2", Name: "Room B", Type: models.RoomParallel,
				OnlineMeetingURL: strPtr("https://meet.example.com/xyz")},
		},
	}

	days := builder.BuildDays(models.Conference{ID: "conf-1", Schedules: []models.TimeSlot{slot}})
	require.Len(t, days[0].Items, 2)

	byRoom := map[string]ScheduleItem{}
	for _, item := range days[0].Items {
		byRoom[item.RoomName] = item
	}
	assert.Equal(t, "Main Room", byRoom["Auditorium"].Location)
	assert.Equal(t, "https://meet.example.com/xyz", byRoom["Room B"].Location)
	assert.Equal(t, "https://meet.example.com/xyz", byRoom["Room B"].OnlineURL)
}

func TestBuildDaysBareSlotTitles(t *testing.T) {
	builder := NewBuilder(nil)
	cases := []struct {
		category models.SlotCategory
		notes    string
		want     string
	}{
		{models.SlotBreak, "Coffee Break 10:00-10:15", "Coffee Break"},
		{models.SlotBreak, "Lunch", "Break"},
		{models.SlotOneDayActivity, "City Tour departs 08:00", "One Day Tour"},
		{models.SlotOneDayActivity, "Gala dinner", "Activity"},
		{models.SlotTalk, "", "Conference Session"},
		{models.SlotReporting, "", "Schedule Item"},
	}

	for _, tc := range cases {
		conference := models.Conference{
			ID: "conf-1",
			Schedules: []models.TimeSlot{
				{ID: "slot-1", Date: "2025-11-23", Category: tc.category, Notes: tc.notes},
			},
		}
		days := builder.BuildDays(conference)
		require.Len(t, days, 1)
		require.Len(t, days[0].Items, 1, "bare slot must yield exactly one item")
		assert.Equal(t, tc.want, days[0].Items[0].Title)
		assert.Equal(t, "All Areas", days[0].Items[0].Location)
		assert.Equal(t, "slot-1", days[0].Items[0].ID)
	}
}

func TestBuildDaysTimeRangeVariants(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", EndTime: "10:00", Category: models.SlotTalk},
			{ID: "slot-2", Date: "2025-11-23", StartTime: "10:00", Category: models.SlotTalk},
			{ID: "slot-3", Date: "2025-11-23", EndTime: "12:00", Category: models.SlotTalk},
			{ID: "slot-4", Date: "2025-11-23", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 1)

	ranges := map[string]string{}
	for _, item := range days[0].Items {
		ranges[item.ID] = item.TimeRange
	}
	assert.Equal(t, "09:00 - 10:00", ranges["slot-1"])
	assert.Equal(t, "From 10:00", ranges["slot-2"])
	assert.Equal(t, "Until 12:00", ranges["slot-3"])
	assert.Equal(t, "", ranges["slot-4"])
}

func TestBuildDaysSortsByStartTimeWithEmptyLastStable(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-no-time-1", Date: "2025-11-23", Category: models.SlotReporting},
			{ID: "slot-late", Date: "2025-11-23", StartTime: "14:00", Category: models.SlotTalk},
			{ID: "slot-no-time-2", Date: "2025-11-23", Category: models.SlotReporting},
			{ID: "slot-early", Date: "2025-11-23", StartTime: "08:30", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)
	require.Len(t, days, 1)
	require.Len(t, days[0].Items, 4)

	assert.Equal(t, "slot-early", days[0].Items[0].ID)
	assert.Equal(t, "slot-late", days[0].Items[1].ID)
	// Untimed items trail in their original relative order.
	assert.Equal(t, "slot-no-time-1", days[0].Items[2].ID)
	assert.Equal(t, "slot-no-time-2", days[0].Items[3].ID)
}

func TestBuildDaysDeterministicOutput(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-2", Date: "2025-11-24", StartTime: "09:00", Category: models.SlotTalk,
				Rooms: []models.Room{mainRoom("room-1", "Main Hall"), {ID: "room-2", Name: "Room A", Type: models.RoomParallel}}},
			{ID: "slot-1", Date: "2025-11-23", StartTime: "11:00", Category: models.SlotBreak, Notes: "Coffee"},
		},
	}

	first := builder.BuildDays(conference)
	second := builder.BuildDays(conference)
	assert.Equal(t, first, second)
}

func TestBuildDaysOrderingIsIdempotent(t *testing.T) {
	builder := NewBuilder(nil)
	conference := models.Conference{
		ID: "conf-1",
		Schedules: []models.TimeSlot{
			{ID: "slot-3", Date: "2025-11-24", StartTime: "13:00", Category: models.SlotTalk},
			{ID: "slot-1", Date: "2025-11-23", StartTime: "09:00", Category: models.SlotTalk},
			{ID: "slot-2", Date: "2025-11-23", StartTime: "11:00", Category: models.SlotTalk},
		},
	}

	days := builder.BuildDays(conference)

	resorted := make([]DaySchedule, len(days))
	copy(resorted, days)
	sort.SliceStable(resorted, func(i, j int) bool {
		return resorted[i].DayNumber < resorted[j].DayNumber
	})
	for d := range resorted {
		items := make([]ScheduleItem, len(resorted[d].Items))
		copy(items, resorted[d].Items)
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
		resorted[d].Items = items
	}

	assert.Equal(t, days, resorted)
}
