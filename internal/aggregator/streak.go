package aggregator

import (
	"sort"
	"strings"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

// StreakClass is the outcome class a streak counts.
type StreakClass int

const (
	StreakWins StreakClass = iota
	StreakDraws
	StreakLosses
	StreakUnbeaten
	StreakWinless
	StreakCleanSheets
	StreakScoring
	StreakConceding
)

// StreakClasses lists every class in display order.
var StreakClasses = []StreakClass{
	StreakWins, StreakDraws, StreakLosses, StreakUnbeaten,
	StreakWinless, StreakCleanSheets, StreakScoring, StreakConceding,
}

func (c StreakClass) String() string {
	switch c {
	case StreakWins:
		return "wins"
	case StreakDraws:
		return "draws"
	case StreakLosses:
		return "losses"
	case StreakUnbeaten:
		return "unbeaten"
	case StreakWinless:
		return "winless"
	case StreakCleanSheets:
		return "clean-sheets"
	case StreakScoring:
		return "scoring"
	case StreakConceding:
		return "conceding"
	default:
		return "?"
	}
}

// ParseStreakClass maps a class name back to its value.
func ParseStreakClass(s string) (StreakClass, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range StreakClasses {
		if c.String() == s {
			return c, true
		}
	}
	return StreakWins, false
}

// Match reports whether one side's view of a match continues the streak.
func (c StreakClass) Match(v model.SideView) bool {
	switch c {
	case StreakWins:
		return v.Outcome == model.Win
	case StreakDraws:
		return v.Outcome == model.Draw
	case StreakLosses:
		return v.Outcome == model.Loss
	case StreakUnbeaten:
		return v.Outcome == model.Win || v.Outcome == model.Draw
	case StreakWinless:
		return v.Outcome == model.Draw || v.Outcome == model.Loss
	case StreakCleanSheets:
		return v.CleanSheetFor()
	case StreakScoring:
		return v.GoalsFor > 0
	case StreakConceding:
		return v.GoalsAgainst > 0
	default:
		return false
	}
}

type datedRecord struct {
	rec  model.Record
	date time.Time
}

// chronological returns the dated records sorted ascending by date, keeping
// input order for equal dates. Records without a parseable date are dropped.
func chronological(records []model.Record, dict *model.FieldDict) []datedRecord {
	out := make([]datedRecord, 0, len(records))
	for _, r := range records {
		if d, ok := dict.Date(r, model.FieldDate); ok {
			out = append(out, datedRecord{rec: r, date: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].date.Before(out[j].date)
	})
	return out
}

// Chronological returns records sorted ascending by date, undated dropped.
// The display order of the caller's table is not affected.
func Chronological(records []model.Record, dict *model.FieldDict) []model.Record {
	dated := chronological(records, dict)
	out := make([]model.Record, len(dated))
	for i, d := range dated {
		out[i] = d.rec
	}
	return out
}

// LongestStreak scans records in date order once, keeping the longest run of
// class together with its first and last date. The first run wins a tie.
func LongestStreak(records []model.Record, dict *model.FieldDict, class StreakClass, p Perspective) model.StreakResult {
	return longestStreak(chronological(records, dict), dict, class, p)
}

func longestStreak(dated []datedRecord, dict *model.FieldDict, class StreakClass, p Perspective) model.StreakResult {
	var best model.StreakResult
	run := 0
	var runStart time.Time
	for _, d := range dated {
		if !class.Match(View(dict, d.rec, p)) {
			run = 0
			continue
		}
		if run == 0 {
			runStart = d.date
		}
		run++
		if run > best.Count {
			best = model.StreakResult{Count: run, Start: runStart, End: d.date}
		}
	}
	return best
}

// GroupStreaks sets Streak on each row to the longest run of class within the
// row's group. Records are sorted once and partitioned by key.
func GroupStreaks(rows []model.AggregateRow, records []model.Record, dict *model.FieldDict, key KeyFunc, class StreakClass, p Perspective) {
	groups := make(map[string][]datedRecord)
	for _, d := range chronological(records, dict) {
		if k := key(d.rec); k != "" {
			groups[k] = append(groups[k], d)
		}
	}
	for i := range rows {
		rows[i].Streak = longestStreak(groups[rows[i].Key], dict, class, p)
	}
}

// StreakReport is the longest run of every class for one record set.
type StreakReport struct {
	Class  StreakClass
	Streak model.StreakResult
}

// AllStreaks computes every class over the same chronological order.
func AllStreaks(records []model.Record, dict *model.FieldDict, p Perspective) []StreakReport {
	dated := chronological(records, dict)
	out := make([]StreakReport, 0, len(StreakClasses))
	for _, c := range StreakClasses {
		out = append(out, StreakReport{Class: c, Streak: longestStreak(dated, dict, c, p)})
	}
	return out
}
