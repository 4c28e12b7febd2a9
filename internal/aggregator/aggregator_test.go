package aggregator

import (
	"fmt"
	"testing"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

var matchDict = model.MatchFields()

// ahlyRecords is the three-match scenario: W 2-0, L 0-1, W 1-0.
func ahlyRecords() []model.Record {
	return []model.Record{
		{"TEAM": "Ahly", "RESULT": "W", "GF": 2, "GA": 0, "DATE": "2024-01-01"},
		{"TEAM": "Ahly", "RESULT": "L", "GF": 0, "GA": 1, "DATE": "2024-01-08"},
		{"TEAM": "Ahly", "RESULT": "W", "GF": 1, "GA": 0, "DATE": "2024-01-15"},
	}
}

func day(s string) time.Time {
	d, _ := model.ParseDate(s)
	return d
}

func TestSummaryScenario(t *testing.T) {
	recs := ahlyRecords()
	s := Summary(recs, matchDict, Primary)

	if s.Matches != 3 || s.Wins != 2 || s.Losses != 1 || s.Draws != 0 {
		t.Errorf("W/D/L mismatch: %+v", s)
	}
	if s.GoalsFor != 3 || s.GoalsAgainst != 1 {
		t.Errorf("goals: want 3-1, got %d-%d", s.GoalsFor, s.GoalsAgainst)
	}
	if s.CleanSheetsFor != 2 {
		t.Errorf("clean sheets for: want 2, got %d", s.CleanSheetsFor)
	}
	if s.CleanSheetsAgainst != 1 {
		t.Errorf("clean sheets against: want 1, got %d", s.CleanSheetsAgainst)
	}

	streak := LongestStreak(recs, matchDict, StreakWins, Primary)
	if streak.Count != 1 {
		t.Errorf("non-contiguous wins: want streak 1, got %d", streak.Count)
	}
	if !streak.Start.Equal(day("2024-01-01")) || !streak.End.Equal(day("2024-01-01")) {
		t.Errorf("first run should win the tie, got %v..%v", streak.Start, streak.End)
	}
}

func TestMirrorIdentities(t *testing.T) {
	recs := append(ahlyRecords(),
		model.Record{"TEAM": "Ahly", "RESULT": "D.", "GF": 1, "GA": 1, "DATE": "2024-01-22"},
		model.Record{"TEAM": "Ahly", "RESULT": "D", "GF": 0, "GA": 0, "DATE": "2024-01-29"},
	)
	p := Summary(recs, matchDict, Primary)
	o := Summary(recs, matchDict, Opponent)

	if o.Wins != p.Losses || o.Losses != p.Wins || o.Draws != p.Draws {
		t.Errorf("mirrored W/D/L mismatch: primary %+v opponent %+v", p, o)
	}
	if o.GoalsFor != p.GoalsAgainst || o.GoalsAgainst != p.GoalsFor {
		t.Errorf("mirrored goals mismatch: primary %+v opponent %+v", p, o)
	}
	if o.CleanSheetsFor != p.CleanSheetsAgainst {
		t.Errorf("opponent clean sheets should equal our blanks: %d vs %d", o.CleanSheetsFor, p.CleanSheetsAgainst)
	}
	if p.Draws != 2 {
		t.Errorf("both draw markers must count as draws, got %d", p.Draws)
	}
}

func TestInvert(t *testing.T) {
	v := Invert(matchDict, model.Record{"RESULT": "W", "GF": 3, "GA": 1})
	if v.Outcome != model.Loss || v.GoalsFor != 1 || v.GoalsAgainst != 3 {
		t.Errorf("unexpected inverted view %+v", v)
	}
}

func TestGroupByTotals(t *testing.T) {
	var recs []model.Record
	teams := []string{"Zamalek", "Pyramids", "Ismaily"}
	results := []string{"W", "D", "L", "D."}
	for i := 0; i < 40; i++ {
		recs = append(recs, model.Record{
			"OPPONENT TEAM": teams[i%len(teams)],
			"RESULT":        results[i%len(results)],
			"GF":            i % 3,
			"GA":            i % 2,
		})
	}
	rows := GroupBy(recs, KeyField(matchDict, model.FieldOpponent), MatchReducer(matchDict, Primary))

	total := 0
	for _, r := range rows {
		total += r.Matches
		if r.Wins+r.Draws+r.Losses != r.Matches {
			t.Errorf("%s: W+D+L=%d, matches=%d", r.Key, r.Wins+r.Draws+r.Losses, r.Matches)
		}
	}
	if total != len(recs) {
		t.Errorf("sum of matches: want %d, got %d", len(recs), total)
	}
}

func TestGroupByExcludesEmptyKey(t *testing.T) {
	recs := []model.Record{
		{"REFREE": "Gehad", "RESULT": "W"},
		{"REFREE": "", "RESULT": "W"},
		{"RESULT": "L"},
	}
	rows := GroupBy(recs, KeyField(matchDict, model.FieldReferee), MatchReducer(matchDict, Primary))
	if len(rows) != 1 || rows[0].Key != "Gehad" || rows[0].Matches != 1 {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestSortByMatchesTieBreak(t *testing.T) {
	rows := []model.AggregateRow{{Key: "b", Matches: 2}, {Key: "a", Matches: 2}, {Key: "c", Matches: 5}}
	SortByMatches(rows)
	got := []string{rows[0].Key, rows[1].Key, rows[2].Key}
	if fmt.Sprint(got) != "[c a b]" {
		t.Errorf("want [c a b], got %v", got)
	}
}

func TestSortSeasons(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "2019-20"}, {Key: "Cup 2018"}, {Key: "2021-22"}, {Key: "Cup 2022"}, {Key: "Friendly"},
	}
	SortSeasons(rows)
	var got []string
	for _, r := range rows {
		got = append(got, r.Key)
	}
	want := "[2021-22 2019-20 Cup 2022 Cup 2018 Friendly]"
	if fmt.Sprint(got) != want {
		t.Errorf("want %s, got %v", want, got)
	}
}

func TestSortByColumn(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "a", GoalsFor: 1, GoalsAgainst: 3},
		{Key: "b", GoalsFor: 5, GoalsAgainst: 0},
		{Key: "c", GoalsFor: 2, GoalsAgainst: 2},
	}
	SortBy(rows, "gd", true)
	if rows[0].Key != "b" || rows[2].Key != "a" {
		t.Errorf("gd desc: got %v %v %v", rows[0].Key, rows[1].Key, rows[2].Key)
	}
	SortBy(rows, "key", false)
	if rows[0].Key != "a" {
		t.Errorf("key asc: got %v first", rows[0].Key)
	}
}

func TestLongestStreakEmptyAndMonotone(t *testing.T) {
	losses := []model.Record{
		{"RESULT": "L", "DATE": "2024-01-01"},
		{"RESULT": "L", "DATE": "2024-01-02"},
	}
	s := LongestStreak(losses, matchDict, StreakWins, Primary)
	if s.Count != 0 || !s.Start.IsZero() || !s.End.IsZero() || s.Found() {
		t.Errorf("no wins: want zero streak with no dates, got %+v", s)
	}

	recs := ahlyRecords()
	before := LongestStreak(recs, matchDict, StreakWins, Primary).Count
	for _, date := range []string{"2023-12-25", "2024-01-04", "2024-01-10", "2024-02-01"} {
		more := append(append([]model.Record{}, recs...), model.Record{"RESULT": "W", "GF": 1, "GA": 0, "DATE": date})
		after := LongestStreak(more, matchDict, StreakWins, Primary).Count
		if after < before {
			t.Errorf("adding a win on %s decreased the streak: %d -> %d", date, before, after)
		}
	}
}

func TestLongestStreakSortsChronologically(t *testing.T) {
	recs := []model.Record{
		{"RESULT": "W", "DATE": "2024-03-01"},
		{"RESULT": "L", "DATE": "2024-02-01"},
		{"RESULT": "W", "DATE": "2024-04-01"},
		{"RESULT": "W", "DATE": "2024-01-01"},
		{"RESULT": "W", "DATE": "not a date"},
	}
	s := LongestStreak(recs, matchDict, StreakWins, Primary)
	if s.Count != 2 || !s.Start.Equal(day("2024-03-01")) || !s.End.Equal(day("2024-04-01")) {
		t.Errorf("want 2 wins 2024-03-01..2024-04-01, got %+v", s)
	}
	opp := LongestStreak(recs, matchDict, StreakLosses, Opponent)
	if opp.Count != s.Count {
		t.Errorf("opponent loss streak should mirror our win streak: %d vs %d", opp.Count, s.Count)
	}
}

func TestUnbeatenTreatsAnnotatedDrawAsDraw(t *testing.T) {
	recs := []model.Record{
		{"RESULT": "W", "DATE": "2024-01-01"},
		{"RESULT": "D.", "DATE": "2024-01-02"},
		{"RESULT": "D", "DATE": "2024-01-03"},
		{"RESULT": "L", "DATE": "2024-01-04"},
	}
	if got := LongestStreak(recs, matchDict, StreakUnbeaten, Primary).Count; got != 3 {
		t.Errorf("unbeaten: want 3, got %d", got)
	}
	if got := LongestStreak(recs, matchDict, StreakDraws, Primary).Count; got != 2 {
		t.Errorf("draws: want 2, got %d", got)
	}
}

func TestGroupStreaks(t *testing.T) {
	recs := []model.Record{
		{"SEASON": "2023", "RESULT": "W", "DATE": "2023-01-01"},
		{"SEASON": "2023", "RESULT": "W", "DATE": "2023-01-02"},
		{"SEASON": "2024", "RESULT": "W", "DATE": "2024-01-01"},
		{"SEASON": "2024", "RESULT": "L", "DATE": "2024-01-02"},
	}
	key := KeyField(matchDict, model.FieldSeason)
	rows := GroupBy(recs, key, MatchReducer(matchDict, Primary))
	GroupStreaks(rows, recs, matchDict, key, StreakWins, Primary)
	for _, r := range rows {
		want := map[string]int{"2023": 2, "2024": 1}[r.Key]
		if r.Streak.Count != want {
			t.Errorf("%s: want streak %d, got %d", r.Key, want, r.Streak.Count)
		}
	}
}

func TestHeadToHeadMirrorsReversedFixtures(t *testing.T) {
	recs := []model.Record{
		{"TEAM": "Al Ahly", "OPPONENT TEAM": "Zamalek", "RESULT": "W", "GF": 2, "GA": 1},
		{"TEAM": "Zamalek SC", "OPPONENT TEAM": "Al Ahly", "RESULT": "W", "GF": 1, "GA": 0},
		{"TEAM": "Al Ahly", "OPPONENT TEAM": "Pyramids", "RESULT": "W", "GF": 3, "GA": 0},
	}
	h := HeadToHead(recs, matchDict, "ahly", "zamalek")
	if h.Side.Matches != 2 || h.Side.Wins != 1 || h.Side.Losses != 1 {
		t.Errorf("ahly side: %+v", h.Side)
	}
	if h.Side.GoalsFor != 2 || h.Side.GoalsAgainst != 2 {
		t.Errorf("ahly goals: want 2-2, got %d-%d", h.Side.GoalsFor, h.Side.GoalsAgainst)
	}
	if h.Other.Wins != h.Side.Losses || h.Other.GoalsFor != h.Side.GoalsAgainst {
		t.Errorf("other side must mirror: %+v vs %+v", h.Other, h.Side)
	}
	if len(h.Matches) != 2 {
		t.Errorf("want 2 fixtures, got %d", len(h.Matches))
	}
}

func TestDimensionsOpponentManagerIsMirrored(t *testing.T) {
	recs := []model.Record{
		{"OPPONENT MANAGER": "Ferreira", "RESULT": "W", "GF": 2, "GA": 0},
		{"OPPONENT MANAGER": "Ferreira", "RESULT": "L", "GF": 0, "GA": 3},
		{"OPPONENT MANAGER": "Ferreira", "RESULT": "W", "GF": 1, "GA": 0},
	}
	d, ok := LookupDimension("opponent-managers")
	if !ok {
		t.Fatal("opponent-managers dimension missing")
	}
	rows := GroupByDimension(recs, matchDict, d)
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Wins != 1 || r.Losses != 2 || r.GoalsFor != 3 || r.GoalsAgainst != 3 {
		t.Errorf("opponent manager view not mirrored: %+v", r)
	}
}
