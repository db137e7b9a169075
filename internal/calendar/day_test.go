package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseIgnoresOffset(t *testing.T) {
	a := MustParse("2025-01-01")
	b, err := Parse("2025-01-01T23:30:00-05:00")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if a != b {
		t.Fatalf("expected same day, got %s and %s", a, b)
	}
	loc := time.FixedZone("east", 14*3600)
	if FromTime(time.Date(2025, 1, 1, 0, 30, 0, 0, loc)) != a {
		t.Fatal("FromTime should use the date in the value's own location")
	}
}

func TestParseMalformed(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "01/02/2025", "tomorrow"} {
		if _, err := Parse(s); !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("Parse(%q) err = %v, want ErrMalformedDate", s, err)
		}
	}
}

func TestDayArithmetic(t *testing.T) {
	d := MustParse("2024-12-31")
	if got := d.AddDays(1).String(); got != "2025-01-01" {
		t.Fatalf("AddDays across year: %s", got)
	}
	if got := MustParse("2024-02-28").AddDays(1).String(); got != "2024-02-29" {
		t.Fatalf("leap day: %s", got)
	}
	if n := d.DaysUntil(MustParse("2025-01-05")); n != 5 {
		t.Fatalf("DaysUntil = %d", n)
	}
	if !d.Time().Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Time not anchored at UTC midnight: %v", d.Time())
	}
}

func TestDayJSON(t *testing.T) {
	var v struct {
		D Day `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-03-09"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, _ := json.Marshal(v)
	if string(out) != `{"d":"2025-03-09"}` {
		t.Fatalf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`{"d":"nope"}`), &v); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}

func TestDayScan(t *testing.T) {
	var d Day
	if err := d.Scan([]byte("2025-01-04")); err != nil || d.String() != "2025-01-04" {
		t.Fatalf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2025-01-05" {
		t.Fatalf("scan time: %v %s", err, d)
	}
	if err := d.Scan(nil); err == nil {
		t.Fatal("scan nil should fail")
	}
}

func TestViewport(t *testing.T) {
	start := MustParse("2025-01-01")
	v, err := NewViewport(start, 3)
	if err != nil {
		t.Fatal(err)
	}
	if v.Last().String() != "2025-01-03" || v.End().String() != "2025-01-04" {
		t.Fatalf("bounds: last=%s end=%s", v.Last(), v.End())
	}
	if i, ok := v.Index(MustParse("2025-01-02")); !ok || i != 1 {
		t.Fatalf("Index = %d %v", i, ok)
	}
	if _, ok := v.Index(MustParse("2025-01-04")); ok {
		t.Fatal("day after viewport reported visible")
	}
	if _, err := NewViewport(start, 0); !errors.Is(err, ErrInvalidViewport) {
		t.Fatalf("empty viewport err = %v", err)
	}
	if _, err := ViewportOf([]Day{start, start.AddDays(2)}); !errors.Is(err, ErrInvalidViewport) {
		t.Fatalf("gap viewport err = %v", err)
	}
	w, err := ViewportOf(v.Days())
	if err != nil || w != v {
		t.Fatalf("ViewportOf(Days()) = %+v %v", w, err)
	}
}
