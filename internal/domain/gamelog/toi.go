package gamelog

import (
	"math"
	"strconv"
	"strings"
)

type TOIKind uint8

const (
	TOIMissing TOIKind = iota
	TOIText
	TOINumber
)

// RawTOI keeps the time-on-ice cell exactly as the source delivered it.
type RawTOI struct {
	Kind   TOIKind
	Text   string
	Number float64
}

func MissingTOI() RawTOI {
	return RawTOI{Kind: TOIMissing}
}

func TOIFromText(v string) RawTOI {
	return RawTOI{Kind: TOIText, Text: v}
}

func TOIFromNumber(v float64) RawTOI {
	if math.IsNaN(v) {
		return MissingTOI()
	}
	return RawTOI{Kind: TOINumber, Number: v}
}

func (r RawTOI) String() string {
	switch r.Kind {
	case TOIText:
		return r.Text
	case TOINumber:
		return strconv.FormatFloat(r.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// TOIPolicy decides what an unparseable string becomes. A nil Fallback keeps it null.
type TOIPolicy struct {
	Fallback *float64
}

func DefaultTOIPolicy() TOIPolicy {
	return TOIPolicy{}
}

func FixedTOIFallback(minutes float64) TOIPolicy {
	return TOIPolicy{Fallback: &minutes}
}

func (p TOIPolicy) fallback() *float64 {
	if p.Fallback == nil {
		return nil
	}
	v := *p.Fallback
	return &v
}

// ParseTOI converts a raw time-on-ice value into fractional minutes.
// Missing input stays nil regardless of policy.
func ParseTOI(raw RawTOI, policy TOIPolicy) *float64 {
	switch raw.Kind {
	case TOIMissing:
		return nil
	case TOINumber:
		if math.IsNaN(raw.Number) || math.IsInf(raw.Number, 0) {
			return nil
		}
		v := raw.Number
		return &v
	case TOIText:
		minutes, ok := parseClock(raw.Text)
		if !ok {
			return policy.fallback()
		}
		return &minutes
	default:
		return policy.fallback()
	}
}

// ParseClock parses a "MM:SS" string with the default policy.
func ParseClock(v string) *float64 {
	return ParseTOI(TOIFromText(v), DefaultTOIPolicy())
}

func parseClock(v string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, false
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, false
	}

	return float64(minutes) + float64(seconds)/60, true
}
