package profile

import (
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Day is a weekday column of the availability grid
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// TimeBlock is a part-of-day row of the availability grid
type TimeBlock string

const (
	Morning   TimeBlock = "Morning"
	Afternoon TimeBlock = "Afternoon"
	Evening   TimeBlock = "Evening"
	Night     TimeBlock = "Night"
)

var days = [...]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var timeBlocks = [...]TimeBlock{Morning, Afternoon, Evening, Night}

// Days returns the weekdays in display order
func Days() []Day {
	return append([]Day(nil), days[:]...)
}

// TimeBlocks returns the time blocks in declaration order
func TimeBlocks() []TimeBlock {
	return append([]TimeBlock(nil), timeBlocks[:]...)
}

func dayIndex(d Day) (int, bool) {
	for i, day := range days {
		if day == d {
			return i, true
		}
	}
	return -1, false
}

func blockIndex(b TimeBlock) (int, bool) {
	for i, block := range timeBlocks {
		if block == b {
			return i, true
		}
	}
	return -1, false
}

// ParseDay validates a weekday name
func ParseDay(s string) (Day, error) {
	if _, ok := dayIndex(Day(s)); !ok {
		return "", apperr.InvalidArgumentf("unknown day %q", s)
	}
	return Day(s), nil
}

// ParseTimeBlock validates a time block name
func ParseTimeBlock(s string) (TimeBlock, error) {
	if _, ok := blockIndex(TimeBlock(s)); !ok {
		return "", apperr.InvalidArgumentf("unknown time block %q", s)
	}
	return TimeBlock(s), nil
}

// AvailabilityGrid is the weekly day x time-block matrix. The zero value is
// a valid grid with every cell unset; all 28 cells always exist.
type AvailabilityGrid struct {
	cells [len(days)][len(timeBlocks)]bool
}

// DaySelection lists the selected blocks for one day
type DaySelection struct {
	Day    Day         `json:"day"`
	Blocks []TimeBlock `json:"blocks"`
}

func cellIndex(day Day, block TimeBlock) (int, int, error) {
	d, ok := dayIndex(day)
	if !ok {
		return 0, 0, apperr.InvalidArgumentf("unknown day %q", day)
	}
	b, ok := blockIndex(block)
	if !ok {
		return 0, 0, apperr.InvalidArgumentf("unknown time block %q", block)
	}
	return d, b, nil
}

// Toggle flips a single cell
func (g *AvailabilityGrid) Toggle(day Day, block TimeBlock) error {
	d, b, err := cellIndex(day, block)
	if err != nil {
		return err
	}
	g.cells[d][b] = !g.cells[d][b]
	return nil
}

// IsSet reports whether a cell is selected
func (g AvailabilityGrid) IsSet(day Day, block TimeBlock) (bool, error) {
	d, b, err := cellIndex(day, block)
	if err != nil {
		return false, err
	}
	return g.cells[d][b], nil
}

// SelectedSummary returns, in weekday order, each day with at least one
// selected block and its blocks in declaration order.
func (g AvailabilityGrid) SelectedSummary() []DaySelection {
	var summary []DaySelection
	for d, day := range days {
		var blocks []TimeBlock
		for b, block := range timeBlocks {
			if g.cells[d][b] {
				blocks = append(blocks, block)
			}
		}
		if len(blocks) > 0 {
			summary = append(summary, DaySelection{Day: day, Blocks: blocks})
		}
	}
	return summary
}

// SelectedCount returns the number of selected cells
func (g AvailabilityGrid) SelectedCount() int {
	count := 0
	for d := range g.cells {
		for b := range g.cells[d] {
			if g.cells[d][b] {
				count++
			}
		}
	}
	return count
}

// Cells returns the full 28-cell nested map used for persistence
func (g AvailabilityGrid) Cells() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(days))
	for d, day := range days {
		row := make(map[string]bool, len(timeBlocks))
		for b, block := range timeBlocks {
			row[string(block)] = g.cells[d][b]
		}
		out[string(day)] = row
	}
	return out
}

// GridFromCells rebuilds a grid from its persisted form. Missing cells are
// unset; unknown days or blocks are rejected.
func GridFromCells(cells map[string]map[string]bool) (AvailabilityGrid, error) {
	var g AvailabilityGrid
	for dayName, row := range cells {
		d, ok := dayIndex(Day(dayName))
		if !ok {
			return AvailabilityGrid{}, apperr.InvalidArgumentf("unknown day %q", dayName)
		}
		for blockName, selected := range row {
			b, ok := blockIndex(TimeBlock(blockName))
			if !ok {
				return AvailabilityGrid{}, apperr.InvalidArgumentf("unknown time block %q", blockName)
			}
			g.cells[d][b] = selected
		}
	}
	return g, nil
}
