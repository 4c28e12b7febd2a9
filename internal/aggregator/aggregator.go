// Package aggregator derives grouped statistics from filtered match records:
// per-key W/D/L and goal totals, mirrored opponent views, streaks,
// head-to-head pairings and per-player breakdowns.
package aggregator

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pable/go-match-stats/internal/model"
)

// Perspective selects which side of a one-sided match record is counted.
type Perspective int

const (
	// Primary counts the record as written.
	Primary Perspective = iota
	// Opponent counts the implicit other side (W↔L, goals swapped).
	Opponent
)

// KeyFunc returns the grouping key of a record; "" excludes the record.
type KeyFunc func(model.Record) string

// Reducer folds one record into its group's row.
type Reducer func(row *model.AggregateRow, r model.Record)

// GroupBy folds records into one row per key in a single pass. Rows come back
// in first-seen key order; callers sort.
func GroupBy(records []model.Record, key KeyFunc, reduce Reducer) []model.AggregateRow {
	index := make(map[string]int)
	var rows []model.AggregateRow
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			rows = append(rows, model.AggregateRow{Key: k})
			i = len(rows) - 1
			index[k] = i
		}
		reduce(&rows[i], r)
	}
	return rows
}

// Invert returns the other side's view of r. Every opponent statistic in the
// package is derived through it.
func Invert(dict *model.FieldDict, r model.Record) model.SideView {
	return dict.Side(r).Mirror()
}

// View returns r from the requested perspective.
func View(dict *model.FieldDict, r model.Record, p Perspective) model.SideView {
	if p == Opponent {
		return Invert(dict, r)
	}
	return dict.Side(r)
}

// MatchReducer counts matches, outcomes, goals and clean sheets.
func MatchReducer(dict *model.FieldDict, p Perspective) Reducer {
	return func(row *model.AggregateRow, r model.Record) {
		row.Add(View(dict, r, p))
	}
}

// Summary totals every record into a single row.
func Summary(records []model.Record, dict *model.FieldDict, p Perspective) model.AggregateRow {
	row := model.AggregateRow{Key: "TOTAL"}
	reduce := MatchReducer(dict, p)
	for _, r := range records {
		reduce(&row, r)
	}
	return row
}

// KeyField groups by the trimmed value of one field.
func KeyField(dict *model.FieldDict, f model.Field) KeyFunc {
	return func(r model.Record) string {
		return dict.Str(r, f)
	}
}

// Dimension is a named grouping of match records.
type Dimension struct {
	Name        string
	Field       model.Field
	Perspective Perspective
	Seasonal    bool
}

// Dimensions are the grouped views a match page offers. The opponent-manager
// table is counted from the opponent's side.
var Dimensions = []Dimension{
	{Name: "opponents", Field: model.FieldOpponent},
	{Name: "teams", Field: model.FieldTeam},
	{Name: "seasons", Field: model.FieldSeason, Seasonal: true},
	{Name: "championships", Field: model.FieldChampionship},
	{Name: "managers", Field: model.FieldManager},
	{Name: "opponent-managers", Field: model.FieldOpponentManager, Perspective: Opponent},
	{Name: "referees", Field: model.FieldReferee},
	{Name: "stadiums", Field: model.FieldStadium},
	{Name: "venues", Field: model.FieldVenue},
}

// LookupDimension finds a dimension by name.
func LookupDimension(name string) (Dimension, bool) {
	for _, d := range Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// GroupByDimension groups and orders records for d.
func GroupByDimension(records []model.Record, dict *model.FieldDict, d Dimension) []model.AggregateRow {
	rows := GroupBy(records, KeyField(dict, d.Field), MatchReducer(dict, d.Perspective))
	if d.Seasonal {
		SortSeasons(rows)
	} else {
		SortByMatches(rows)
	}
	return rows
}

// SortByMatches orders by matches played descending, ties by key.
func SortByMatches(rows []model.AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Matches != rows[j].Matches {
			return rows[i].Matches > rows[j].Matches
		}
		return rows[i].Key < rows[j].Key
	})
}

// SortSeasons groups season keys by their non-numeric prefix alphabetically,
// then orders each group by embedded year, newest first.
func SortSeasons(rows []model.AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, yi := seasonParts(rows[i].Key)
		pj, yj := seasonParts(rows[j].Key)
		if pi != pj {
			return pi < pj
		}
		if yi != yj {
			return yi > yj
		}
		return rows[i].Key < rows[j].Key
	})
}

// seasonParts splits "League 2019-20" into ("League", 2019). Keys without a
// four-digit year get -1.
func seasonParts(key string) (string, int) {
	idx := strings.IndexFunc(key, unicode.IsDigit)
	if idx < 0 {
		return strings.TrimSpace(key), -1
	}
	prefix := strings.TrimSpace(key[:idx])
	rest := key[idx:]
	for i := 0; i+4 <= len(rest); i++ {
		chunk := rest[i : i+4]
		if isDigits(chunk) && (i+4 == len(rest) || !isDigit(rest[i+4])) && (i == 0 || !isDigit(rest[i-1])) {
			year, _ := strconv.Atoi(chunk)
			return prefix, year
		}
	}
	return prefix, -1
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}

// SortColumns are the user-selectable aggregate sort columns.
var SortColumns = []string{"key", "matches", "wins", "draws", "losses", "gf", "ga", "gd", "cs_for", "cs_against", "win_pct", "points", "streak"}

// SortBy orders rows by a named column; unknown columns fall back to
// matches. Ties are broken by key ascending.
func SortBy(rows []model.AggregateRow, column string, desc bool) {
	value := func(a *model.AggregateRow) float64 {
		switch column {
		case "wins":
			return float64(a.Wins)
		case "draws":
			return float64(a.Draws)
		case "losses":
			return float64(a.Losses)
		case "gf":
			return float64(a.GoalsFor)
		case "ga":
			return float64(a.GoalsAgainst)
		case "gd":
			return float64(a.GoalDiff())
		case "cs_for":
			return float64(a.CleanSheetsFor)
		case "cs_against":
			return float64(a.CleanSheetsAgainst)
		case "win_pct":
			return a.WinPct()
		case "points":
			return float64(a.Points())
		case "streak":
			return float64(a.Streak.Count)
		default:
			return float64(a.Matches)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if column == "key" {
			if desc {
				return rows[i].Key > rows[j].Key
			}
			return rows[i].Key < rows[j].Key
		}
		vi, vj := value(&rows[i]), value(&rows[j])
		if vi != vj {
			if desc {
				return vi > vj
			}
			return vi < vj
		}
		return rows[i].Key < rows[j].Key
	})
}
