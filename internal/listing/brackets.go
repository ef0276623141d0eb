package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownFilter is returned when a filter value cannot be parsed.
var ErrUnknownFilter = errors.New("unknown filter value")

// Bracket partitions a numeric field into fixed ranges.
type Bracket string

// Bracket values.
const (
	BracketAll    Bracket = "all"
	BracketLow    Bracket = "low"
	BracketMedium Bracket = "medium"
	BracketHigh   Bracket = "high"
)

// Brackets lists the values in display order.
var Brackets = []Bracket{BracketAll, BracketLow, BracketMedium, BracketHigh}

// Thresholds split low from medium (Low) and medium from high (High).
// Low is v < Low, medium is Low <= v < High, high is v >= High.
type Thresholds struct {
	Low  float64
	High float64
}

// Fixed thresholds used by the product and purchase listings.
var (
	PriceThresholds  = Thresholds{Low: 50, High: 200}
	AmountThresholds = Thresholds{Low: 100, High: 500}
)

// ParseBracket parses a flag value. Empty means all.
func ParseBracket(s string) (Bracket, error) {
	switch b := Bracket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BracketAll, nil
	case BracketAll, BracketLow, BracketMedium, BracketHigh:
		return b, nil
	default:
		return BracketAll, fmt.Errorf("%w: bracket %q (want all, low, medium or high)", ErrUnknownFilter, s)
	}
}

// Contains reports whether v falls in the bracket.
func (b Bracket) Contains(v float64, th Thresholds) bool {
	switch b {
	case BracketLow:
		return v < th.Low
	case BracketMedium:
		return v >= th.Low && v < th.High
	case BracketHigh:
		return v >= th.High
	default:
		return true
	}
}

// Next cycles to the following bracket, wrapping around.
func (b Bracket) Next() Bracket {
	for i, v := range Brackets {
		if v == b {
			return Brackets[(i+1)%len(Brackets)]
		}
	}
	return BracketAll
}

// Label describes the bracket with its bounds, e.g. "low (<50)".
func (b Bracket) Label(th Thresholds) string {
	switch b {
	case BracketLow:
		return fmt.Sprintf("low (<%s)", Number(th.Low))
	case BracketMedium:
		return fmt.Sprintf("medium (%s-%s)", Number(th.Low), Number(th.High))
	case BracketHigh:
		return fmt.Sprintf("high (>=%s)", Number(th.High))
	default:
		return "all"
	}
}

// BracketPredicate filters on value. BracketAll yields nil.
func BracketPredicate[T any](b Bracket, th Thresholds, value func(T) float64) Predicate[T] {
	if b == BracketAll || b == "" {
		return nil
	}
	return func(item T) bool {
		return b.Contains(value(item), th)
	}
}

// Window restricts items to a period ending now.
type Window string

// Window values.
const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// Windows lists the values in display order.
var Windows = []Window{WindowAll, WindowToday, WindowWeek, WindowMonth, WindowYear}

// ParseWindow parses a flag value. Empty means all.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowAll, WindowToday, WindowWeek, WindowMonth, WindowYear:
		return w, nil
	default:
		return WindowAll, fmt.Errorf("%w: date window %q (want all, today, week, month or year)", ErrUnknownFilter, s)
	}
}

// Next cycles to the following window, wrapping around.
func (w Window) Next() Window {
	for i, v := range Windows {
		if v == w {
			return Windows[(i+1)%len(Windows)]
		}
	}
	return WindowAll
}

// Contains reports whether t falls inside the window ending at now.
// Today compares calendar days in now's location; the others look back a fixed number of days.
func (w Window) Contains(t, now time.Time) bool {
	switch w {
	case WindowToday:
		t = t.In(now.Location())
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case WindowWeek:
		return !t.Before(now.AddDate(0, 0, -7))
	case WindowMonth:
		return !t.Before(now.AddDate(0, 0, -30))
	case WindowYear:
		return !t.Before(now.AddDate(0, 0, -365))
	default:
		return true
	}
}

// WindowPredicate filters on the instant returned by at. WindowAll yields nil.
func WindowPredicate[T any](w Window, now time.Time, at func(T) time.Time) Predicate[T] {
	if w == WindowAll || w == "" {
		return nil
	}
	return func(item T) bool {
		return w.Contains(at(item), now)
	}
}
