package grid

import (
	"strings"

	"github.com/icodsa/conference-api/internal/models"
)

// ColumnLabels are the fixed parallel-session columns of the grid, in
// rendering order.
var ColumnLabels = []string{"A", "B", "C", "D", "E"}

// ColumnAssignment pairs a column label with the room occupying it. Room is
// nil when no room was assigned to the column for this slot.
type ColumnAssignment struct {
	Label string       `json:"label"`
	Room  *models.Room `json:"room,omitempty"`
}

// SlotColumns is the resolved parallel-column layout for one time slot.
type SlotColumns struct {
	// SpansAllColumns marks rows that render as a single cell across every
	// column (breaks), regardless of attached rooms.
	SpansAllColumns bool               `json:"spans_all_columns"`
	Columns         []ColumnAssignment `json:"columns"`
}

// ResolveColumns assigns the slot's parallel rooms to the fixed column labels.
//
// The matching policy is heuristic string matching inherited from the
// rendering layer and is a compatibility contract: precedence per column is
// (1) name equals "room X", (2) name contains "room X", (3) identifier
// contains "session X" or the bare letter, all case-insensitive, first match
// in input order wins. Rooms that match no column are then placed into the
// remaining empty columns round-robin in input order. Do not reorder the
// rules; downstream rendering depends on the exact precedence.
func ResolveColumns(slot models.TimeSlot) SlotColumns {
	result := SlotColumns{
		SpansAllColumns: slot.Category == models.SlotBreak,
		Columns:         make([]ColumnAssignment, len(ColumnLabels)),
	}

	parallel := make([]*models.Room, 0, len(slot.Rooms))
	for i := range slot.Rooms {
		if slot.Rooms[i].Type == models.RoomParallel {
			parallel = append(parallel, &slot.Rooms[i])
		}
	}

	assigned := make(map[string]bool, len(parallel))

	for i, label := range ColumnLabels {
		result.Columns[i] = ColumnAssignment{Label: label}
		if room := matchColumn(parallel, assigned, label); room != nil {
			result.Columns[i].Room = room
			assigned[room.ID] = true
		}
	}

	// Fallback: leftover rooms fill empty columns by iteration order.
	next := 0
	for _, room := range parallel {
		if assigned[room.ID] {
			continue
		}
		for next < len(result.Columns) && result.Columns[next].Room != nil {
			next++
		}
		if next >= len(result.Columns) {
			break
		}
		result.Columns[next].Room = room
		assigned[room.ID] = true
	}

	return result
}

func matchColumn(rooms []*models.Room, assigned map[string]bool, label string) *models.Room {
	target := "room " + strings.ToLower(label)

	for _, room := range rooms {
		if assigned[room.ID] {
			continue
		}
		if strings.ToLower(strings.TrimSpace(room.Name)) == target {
			return room
		}
	}

	for _, room := range rooms {
		if assigned[room.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(room.Name), target) {
			return room
		}
	}

	session := "session " + strings.ToLower(label)
	letter := strings.ToLower(label)
	for _, room := range rooms {
		if assigned[room.ID] || room.Identifier == nil {
			continue
		}
		ident := strings.ToLower(*room.Identifier)
		if strings.Contains(ident, session) || strings.Contains(ident, letter) {
			return room
		}
	}

	return nil
}
