package adherence

import (
	"strconv"
	"strings"
)

// Slot is one scheduled drop in a tracked day. Item ids, labels, and times
// are derived from the plan's frequency, never stored.
type Slot struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Time  string `json:"time"` // HH:MM local
}

// The two slot layouts are fixed by the wire format: 4-a-day uses
// morning/noon/afternoon/bedtime, 3-a-day uses morning/afternoon/evening.
var (
	slotsFourDaily = []Slot{
		{ID: "morning", Label: "Morning", Time: "08:00"},
		{ID: "noon", Label: "Noon", Time: "12:00"},
		{ID: "afternoon", Label: "Afternoon", Time: "16:00"},
		{ID: "bedtime", Label: "Bedtime", Time: "21:00"},
	}
	slotsThreeDaily = []Slot{
		{ID: "morning", Label: "Morning", Time: "08:00"},
		{ID: "afternoon", Label: "Afternoon", Time: "14:00"},
		{ID: "evening", Label: "Evening", Time: "20:00"},
	}
)

// FrequencyPerDay parses a frequency label such as "4 times a day". The
// leading integer wins; anything unparseable falls back to 3, the lower
// default regimen.
func FrequencyPerDay(label string) int {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			return n
		}
	}
	return 3
}

// SlotsFor returns the drop slots for a frequency label. Only the 4-a-day
// layout exists besides the 3-a-day default.
func SlotsFor(label string) []Slot {
	if FrequencyPerDay(label) >= 4 {
		return slotsFourDaily
	}
	return slotsThreeDaily
}
