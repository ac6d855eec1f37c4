package archive

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateLayout is the storage and wire layout for archive dates.
const DateLayout = "2006-01-02"

// Date is a calendar date that may be missing. The zero value means missing.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a stored date string. Empty or malformed input yields the
// missing date rather than an error.
func ParseDate(s string) Date {
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{t}
	}
	return Date{}
}

// Valid reports whether the date is present.
func (d Date) Valid() bool {
	return !d.IsZero()
}

// String renders the date in DateLayout, or "" when missing.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes missing dates as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts null, DateLayout and RFC 3339. Unparseable strings
// decode to the missing date.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}
