package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	// SlotMinutes is the atomic allocation unit.
	SlotMinutes = 30
	// LunchMinutes is the fixed length of the daily lunch block.
	LunchMinutes = 60
	// FlexibleMinutes is the length of the optional daily flexible block.
	FlexibleMinutes = 60
)

// FormatError reports a malformed clock string.
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: invalid time %q: %s", e.Field, e.Value, e.Reason)
}

// ToMinutes converts a zero-padded 24-hour "HH:MM" string into minutes since midnight.
func ToMinutes(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, &FormatError{Value: clock, Reason: "expected HH:MM"}
	}
	hour, err := strconv.Atoi(clock[:2])
	if err != nil || !isDigits(clock[:2]) {
		return 0, &FormatError{Value: clock, Reason: "hour is not numeric"}
	}
	minute, err := strconv.Atoi(clock[3:])
	if err != nil || !isDigits(clock[3:]) {
		return 0, &FormatError{Value: clock, Reason: "minute is not numeric"}
	}
	if hour > 23 {
		return 0, &FormatError{Value: clock, Reason: "hour out of range 0-23"}
	}
	if minute > 59 {
		return 0, &FormatError{Value: clock, Reason: "minute out of range 0-59"}
	}
	return hour*60 + minute, nil
}

// ToClock formats minutes since midnight as "HH:MM".
func ToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotsNeeded returns how many slots cover the given duration, never fewer than one.
func SlotsNeeded(minutes int) int {
	slots := (minutes + SlotMinutes - 1) / SlotMinutes
	if slots < 1 {
		return 1
	}
	return slots
}

// NormalizeDay returns the canonical spelling of a day name ("monday " -> "Monday").
func NormalizeDay(day string) string {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		return ""
	}
	runes := []rune(day)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func sameDay(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func onGrid(minutes int) bool {
	return minutes%SlotMinutes == 0
}

func alignDown(minutes int) int {
	return minutes - minutes%SlotMinutes
}

func alignUp(minutes int) int {
	if rem := minutes % SlotMinutes; rem != 0 {
		return minutes + SlotMinutes - rem
	}
	return minutes
}

func isDigits(raw string) bool {
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
