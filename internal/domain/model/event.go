// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a historical record.
type Kind string

// Known record kinds.
const (
	KindEvent Kind = "event"
	KindBirth Kind = "birth"
	KindDeath Kind = "death"
)

// Event is one candidate item for a calendar date.
// Fields mirror the JSON objects returned by the text-generation service.
type Event struct {
	Type        Kind   `json:"type"`
	Year        Year   `json:"year"`
	Description string `json:"description"`
}

// Valid reports whether the record has a parseable year and a non-empty description.
func (e Event) Valid() bool {
	_, ok := e.Year.Int()
	return ok && strings.TrimSpace(e.Description) != ""
}

// Year keeps the year as received (numeric text or JSON number) and coerces
// it to an integer on demand. The zero value is a missing year.
type Year struct {
	raw string
}

// YearOf builds a Year from an integer.
func YearOf(y int) Year { return Year{raw: strconv.Itoa(y)} }

// YearText builds a Year from its textual form without validating it.
func YearText(s string) Year { return Year{raw: s} }

// Int returns the integer year. Surrounding whitespace and a leading minus
// (BCE) are accepted; an explicit plus sign is not. ok is false for missing or
// non-numeric years.
func (y Year) Int() (int, bool) {
	raw := strings.TrimSpace(y.raw)
	if strings.HasPrefix(raw, "+") {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the year as received.
func (y Year) String() string { return y.raw }

// MarshalJSON writes the year as a JSON string, matching the request schema.
func (y Year) MarshalJSON() ([]byte, error) {
	return json.Marshal(y.raw)
}

// UnmarshalJSON accepts strings, numbers and null. Other JSON values are kept
// verbatim so the record survives and is simply excluded from year filtering.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		y.raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		y.raw = s
	default:
		y.raw = string(data)
	}
	return nil
}

// referenceLeapYear allows February 29 when validating month/day pairs.
const referenceLeapYear = 2024

// ValidDate reports whether month and day name a real calendar day in some year.
func ValidDate(month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= DaysIn(time.Month(month))
}

// DaysIn returns the maximum number of days month can have.
func DaysIn(month time.Month) int {
	// Day 0 of the following month is the last day of month.
	return time.Date(referenceLeapYear, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
