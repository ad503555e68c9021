package gamelog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// RecordInput is one unvalidated source row.
type RecordInput struct {
	Name      string
	Team      string
	Opponent  string
	Date      time.Time
	SeasonAvg *float64
	L5Avg     *float64
	L10Avg    *float64
	TOI       RawTOI
}

// Record is one player-date observation. It is immutable once built by NewRecord.
type Record struct {
	Name       string
	Team       string
	Opponent   string
	Date       time.Time
	SeasonAvg  *float64
	L5Avg      *float64
	L10Avg     *float64
	TOIRaw     RawTOI
	TOIMinutes *float64

	nameKey string
}

func NewRecord(in RecordInput, policy TOIPolicy) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}

	date := in.Date.UTC()
	return Record{
		Name:       strings.TrimSpace(in.Name),
		Team:       strings.TrimSpace(in.Team),
		Opponent:   strings.TrimSpace(in.Opponent),
		Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		SeasonAvg:  cleanAvg(in.SeasonAvg),
		L5Avg:      cleanAvg(in.L5Avg),
		L10Avg:     cleanAvg(in.L10Avg),
		TOIRaw:     in.TOI,
		TOIMinutes: ParseTOI(in.TOI, policy),
		nameKey:    NormalizeName(in.Name),
	}, nil
}

func (in RecordInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("record name is required")
	}
	if in.Date.IsZero() {
		return fmt.Errorf("record date is required for %q", strings.TrimSpace(in.Name))
	}

	return nil
}

// NameKey is the lookup key used for case/whitespace-insensitive matching.
func (r Record) NameKey() string {
	if r.nameKey == "" {
		return NormalizeName(r.Name)
	}
	return r.nameKey
}

func (r Record) DateKey() string {
	return r.Date.Format(DateLayout)
}

// NormalizeName trims, collapses inner whitespace, and lower-cases a player name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func cleanAvg(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}
