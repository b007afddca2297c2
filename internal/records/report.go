package records

import (
	"fmt"
	"time"
)

// ReportDays is the length of the recent-activity window, today included
const ReportDays = 7

// DayStat sums the records of one calendar day
type DayStat struct {
	Day     time.Time // local midnight
	Count   int
	Minutes float64
	// GoalMet is true when the day's total time reached the sum of its targets
	GoalMet bool
}

// Totals summarizes a set of records
type Totals struct {
	Runs              int `yaml:"runs"`
	Minutes           int `yaml:"minutes"`
	AverageCompletion int `yaml:"averageCompletion"` // percent, 0 for no records
	GoalMetCount      int `yaml:"goalMetCount"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RecentWindow returns the start of the day ReportDays-1 days before now and
// the start of tomorrow, in now's location
func RecentWindow(now time.Time) (from, to time.Time) {
	today := startOfDay(now)
	return today.AddDate(0, 0, -(ReportDays - 1)), today.AddDate(0, 0, 1)
}

func between(recs []Record, from, to time.Time) []Record {
	var out []Record
	for _, r := range recs {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

// Recent returns the records inside RecentWindow, keeping their order
func Recent(recs []Record, now time.Time) []Record {
	from, to := RecentWindow(now)
	return between(recs, from, to)
}

// DailyStats returns one entry per day of the recent window, oldest first.
// Days without records are present with zero values.
func DailyStats(recs []Record, now time.Time) []DayStat {
	from, _ := RecentWindow(now)
	loc := now.Location()

	stats := make([]DayStat, ReportDays)
	targets := make([]float64, ReportDays)
	for i := range stats {
		stats[i].Day = from.AddDate(0, 0, i)
	}
	for _, r := range Recent(recs, now) {
		day := startOfDay(r.Timestamp.In(loc))
		for i := range stats {
			if stats[i].Day.Equal(day) {
				stats[i].Count++
				stats[i].Minutes += r.Duration.Minutes()
				targets[i] += r.TargetDuration.Minutes()
				break
			}
		}
	}
	for i := range stats {
		stats[i].GoalMet = targets[i] > 0 && stats[i].Minutes >= targets[i]
	}
	return stats
}

// ComputeTotals sums runs, minutes, average completion and goals met
func ComputeTotals(recs []Record) Totals {
	t := Totals{Runs: len(recs)}
	if len(recs) == 0 {
		return t
	}
	var dur time.Duration
	var completion float64
	for _, r := range recs {
		dur += r.Duration
		completion += r.CompletionPercentage() / 100
		if r.GoalMet() {
			t.GoalMetCount++
		}
	}
	t.Minutes = int(dur.Minutes())
	t.AverageCompletion = int(completion / float64(len(recs)) * 100)
	return t
}

// DailySummary totals the records of day's calendar day
func DailySummary(recs []Record, day time.Time) Totals {
	from := startOfDay(day)
	return ComputeTotals(between(recs, from, from.AddDate(0, 0, 1)))
}

// WeeklySummary totals the records of the recent window
func WeeklySummary(recs []Record, now time.Time) Totals {
	return ComputeTotals(Recent(recs, now))
}

// FormattedTime renders the total minutes as "1h 05m" or "45m"
func (t Totals) FormattedTime() string {
	h, m := t.Minutes/60, t.Minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
