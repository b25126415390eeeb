package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodsa/conference-api/internal/models"
)

func parallelRoom(id, name string) models.Room {
	return models.Room{ID: id, Name: name, Type: models.RoomParallel}
}

func roomIn(t *testing.T, cols SlotColumns, label string) *models.Room {
	t.Helper()
	for _, col := range cols.Columns {
		if col.Label == label {
			return col.Room
		}
	}
	t.Fatalf("no column labelled %s", label)
	return nil
}

func TestResolveColumnsExactNameMatch(t *testing.T) {
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms:    []models.Room{parallelRoom("room-1", "Room B")},
	}

	cols := ResolveColumns(slot)
	require.Len(t, cols.Columns, 5)

	assert.Nil(t, roomIn(t, cols, "A"))
	require.NotNil(t, roomIn(t, cols, "B"))
	assert.Equal(t, "room-1", roomIn(t, cols, "B").ID)
	assert.Nil(t, roomIn(t, cols, "C"))
	assert.Nil(t, roomIn(t, cols, "D"))
	assert.Nil(t, roomIn(t, cols, "E"))
}

func TestResolveColumnsSubstringNameMatch(t *testing.T) {
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms:    []models.Room{parallelRoom("room-1", "Parallel Room C (2nd floor)")},
	}

	cols := ResolveColumns(slot)
	require.NotNil(t, roomIn(t, cols, "C"))
	assert.Equal(t, "room-1", roomIn(t, cols, "C").ID)
}

func TestResolveColumnsExactBeatsSubstring(t *testing.T) {
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms: []models.Room{
			parallelRoom("room-sub", "Extra Room A Annex"),
			parallelRoom("room-exact", "room a"),
		},
	}

	cols := ResolveColumns(slot)
	require.NotNil(t, roomIn(t, cols, "A"))
	assert.Equal(t, "room-exact", roomIn(t, cols, "A").ID)
}

func TestResolveColumnsIdentifierFallback(t *testing.T) {
	room := parallelRoom("room-1", "Cendrawasih Hall")
	room.Identifier = strPtr("Session D")
	slot := models.TimeSlot{Category: models.SlotTalk, Rooms: []models.Room{room}}

	cols := ResolveColumns(slot)
	require.NotNil(t, roomIn(t, cols, "D"))
	assert.Equal(t, "room-1", roomIn(t, cols, "D").ID)
}

func TestResolveColumnsBareLetterIdentifier(t *testing.T) {
	room := parallelRoom("room-1", "Ballroom 2")
	room.Identifier = strPtr("E")
	slot := models.TimeSlot{Category: models.SlotTalk, Rooms: []models.Room{room}}

	cols := ResolveColumns(slot)
	require.NotNil(t, roomIn(t, cols, "E"))
	assert.Equal(t, "room-1", roomIn(t, cols, "E").ID)
}

func TestResolveColumnsRoomOccupiesSingleColumn(t *testing.T) {
	// "Room B" contains the letters of several identifiers but may only land
	// in column B.
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms:    []models.Room{parallelRoom("room-1", "Room B")},
	}

	cols := ResolveColumns(slot)
	occupied := 0
	for _, col := range cols.Columns {
		if col.Room != nil {
			occupied++
			assert.Equal(t, "B", col.Label)
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestResolveColumnsUnmatchedRoomsRoundRobin(t *testing.T) {
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms: []models.Room{
			parallelRoom("room-b", "Room B"),
			parallelRoom("room-x", "Garuda Hall"),
			parallelRoom("room-y", "Merak Hall"),
		},
	}

	cols := ResolveColumns(slot)
	// Room B claims its column; unmatched halls fill the remaining columns in
	// input order starting from the first empty one.
	assert.Equal(t, "room-x", roomIn(t, cols, "A").ID)
	assert.Equal(t, "room-b", roomIn(t, cols, "B").ID)
	assert.Equal(t, "room-y", roomIn(t, cols, "C").ID)
	assert.Nil(t, roomIn(t, cols, "D"))
	assert.Nil(t, roomIn(t, cols, "E"))
}

func TestResolveColumnsIgnoresMainRooms(t *testing.T) {
	slot := models.TimeSlot{
		Category: models.SlotTalk,
		Rooms: []models.Room{
			{ID: "room-main", Name: "Room A", Type: models.RoomMain},
		},
	}

	cols := ResolveColumns(slot)
	for _, col := range cols.Columns {
		assert.Nil(t, col.Room)
	}
}

func TestResolveColumnsBreakSpansAllColumns(t *testing.T) {
	withRooms := models.TimeSlot{
		Category: models.SlotBreak,
		Rooms:    []models.Room{parallelRoom("room-1", "Room A")},
	}
	assert.True(t, ResolveColumns(withRooms).SpansAllColumns)

	withoutRooms := models.TimeSlot{Category: models.SlotBreak}
	assert.True(t, ResolveColumns(withoutRooms).SpansAllColumns)

	talk := models.TimeSlot{Category: models.SlotTalk}
	assert.False(t, ResolveColumns(talk).SpansAllColumns)
}
