// Package measurement turns free-text player metric rows into typed values.
//
// Metric labels are uncontrolled ("FB Velo", "Exit Velocity", "60 yd"), so a
// single keyword classifier assigns each label a Kind. The classifier runs when
// a metric is recorded (the kind is stored alongside the row) and again at read
// time for rows that predate stored kinds.
package measurement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

type Kind string

const (
	KindThrowVelocity Kind = "throw_velocity"
	KindExitVelocity  Kind = "exit_velocity"
	KindSixtyTime     Kind = "sixty_time"
	KindOther         Kind = "other"
)

func (k Kind) Valid() bool {
	switch k {
	case KindThrowVelocity, KindExitVelocity, KindSixtyTime, KindOther:
		return true
	}
	return false
}

// Classify assigns a label to a Kind. Exit velocity is checked before the
// generic velocity keywords so "Exit Velocity" never reads as a throwing
// velocity.
func Classify(label string) Kind {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "exit"):
		return KindExitVelocity
	case strings.Contains(l, "velo"):
		return KindThrowVelocity
	case strings.Contains(l, "60"), strings.Contains(l, "sixty"):
		return KindSixtyTime
	default:
		return KindOther
	}
}

// KindOf returns the stored kind of a row, classifying the label when the row
// has none.
func KindOf(m models.PlayerMetric) Kind {
	if m.Kind != nil {
		if k := Kind(*m.Kind); k.Valid() {
			return k
		}
	}
	return Classify(m.Label)
}

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseValue reads the leading decimal number of a value such as "92",
// "92.5 mph" or "6.8s". Values without one ("N/A", "") do not parse.
func ParseValue(value string) (float64, bool) {
	match := leadingNumber.FindString(value)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(match), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Measurement is one classified metric. Value is nil when the row's text
// carries no number.
type Measurement struct {
	Kind  Kind
	Label string
	Raw   string
	Value *float64
}

func Measure(label, value string) Measurement {
	m := Measurement{
		Kind:  Classify(label),
		Label: label,
		Raw:   value,
	}
	if f, ok := ParseValue(value); ok {
		m.Value = &f
	}
	return m
}
