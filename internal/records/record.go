// Package records keeps the log of finished jogging sessions and the
// summaries shown on the records page.
package records

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// MinDuration is the shortest session that produces a record
	MinDuration = 60 * time.Second

	// StorageKey is the key the whole log is stored under
	StorageKey = "JoggingRecords"

	caloriesPerSecond = 0.12
)

// Record is one finished session. Records are never modified after creation.
type Record struct {
	ID                     string
	Duration               time.Duration
	TargetDuration         time.Duration
	Timestamp              time.Time
	SoundscapeLabel        string
	DerivedCalorieEstimate int
}

// Eligible reports whether a session of the given length earns a record
func Eligible(elapsed time.Duration) bool {
	return elapsed >= MinDuration
}

// Calories estimates the energy used over d of slow jogging
func Calories(d time.Duration) int {
	return int(d.Seconds() * caloriesPerSecond)
}

// NewRecord builds a record with a fresh id
func NewRecord(elapsed, target time.Duration, at time.Time, soundscapeLabel string) Record {
	return Record{
		ID:                     uuid.NewString(),
		Duration:               elapsed,
		TargetDuration:         target,
		Timestamp:              at,
		SoundscapeLabel:        soundscapeLabel,
		DerivedCalorieEstimate: Calories(elapsed),
	}
}

// CompletionPercentage is the share of the target reached, capped at 100
func (r Record) CompletionPercentage() float64 {
	if r.TargetDuration <= 0 {
		return 0
	}
	return min(float64(r.Duration)/float64(r.TargetDuration), 1) * 100
}

// GoalMet reports whether the session reached its target
func (r Record) GoalMet() bool {
	return r.TargetDuration > 0 && r.Duration >= r.TargetDuration
}

// FormattedDuration renders the duration as m:ss, or h:mm:ss past an hour
func (r Record) FormattedDuration() string {
	return FormatClock(r.Duration)
}

// FormattedDate renders the timestamp as MM/DD HH:MM in its own location
func (r Record) FormattedDate() string {
	return r.Timestamp.Format("01/02 15:04")
}

// FormatClock renders d as m:ss, or h:mm:ss past an hour. Fractions are truncated.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// recordDoc is the persisted form: durations in seconds
type recordDoc struct {
	ID                     string    `json:"id" yaml:"id"`
	Duration               float64   `json:"duration" yaml:"duration"`
	TargetDuration         float64   `json:"targetDuration" yaml:"targetDuration"`
	Timestamp              time.Time `json:"timestamp" yaml:"timestamp"`
	SoundscapeLabel        string    `json:"soundscapeLabel" yaml:"soundscapeLabel"`
	DerivedCalorieEstimate int       `json:"derivedCalorieEstimate" yaml:"derivedCalorieEstimate"`
}

func (r Record) doc() recordDoc {
	return recordDoc{
		ID:                     r.ID,
		Duration:               r.Duration.Seconds(),
		TargetDuration:         r.TargetDuration.Seconds(),
		Timestamp:              r.Timestamp,
		SoundscapeLabel:        r.SoundscapeLabel,
		DerivedCalorieEstimate: r.DerivedCalorieEstimate,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.doc())
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var d recordDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*r = Record{
		ID:                     d.ID,
		Duration:               seconds(d.Duration),
		TargetDuration:         seconds(d.TargetDuration),
		Timestamp:              d.Timestamp,
		SoundscapeLabel:        d.SoundscapeLabel,
		DerivedCalorieEstimate: d.DerivedCalorieEstimate,
	}
	return nil
}

func (r Record) MarshalYAML() (any, error) {
	return r.doc(), nil
}
