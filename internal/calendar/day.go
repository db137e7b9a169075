// Package calendar holds the whole-day date type used across the booking
// timeline.  A Day carries no time of day and no zone: two values are equal
// exactly when they name the same year, month and day.
package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage form of a Day.
const DateLayout = "2006-01-02"

// ErrMalformedDate is returned when a string cannot be read as a calendar day.
var ErrMalformedDate = errors.New("malformed date")

// Day counts days since 1970-01-01.  Arithmetic and ordering are plain
// integer operations.
type Day int

// Date builds a Day from its components.  Out-of-range months and days are
// normalised the same way time.Date does.
func Date(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day(t.Unix() / 86400)
}

// FromTime takes the calendar date of t as seen in t's own location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current day in the given location.
func Today(loc *time.Location) Day {
	return FromTime(time.Now().In(loc))
}

// Parse reads "YYYY-MM-DD" or an RFC 3339 timestamp.  For timestamps the
// date part as written is used; the offset never shifts the day.
func Parse(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time anchors the day at UTC midnight.
func (d Day) Time() time.Time { return time.Unix(int64(d)*86400, 0).UTC() }

func (d Day) AddDays(n int) Day { return d + Day(n) }

// DaysUntil returns the signed number of days from d to other.
func (d Day) DaysUntil(other Day) int { return int(other - d) }

func (d Day) Before(other Day) bool { return d < other }
func (d Day) After(other Day) bool  { return d > other }

func (d Day) String() string { return d.Time().Format(DateLayout) }

func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value stores the day as a DATE string.
func (d Day) Value() (driver.Value, error) { return d.String(), nil }

// Scan accepts the shapes the MySQL driver produces for DATE columns:
// time.Time with parseTime=true, otherwise []byte or string.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	case nil:
		return fmt.Errorf("%w: NULL", ErrMalformedDate)
	}
	return fmt.Errorf("%w: unsupported type %T", ErrMalformedDate, src)
}
