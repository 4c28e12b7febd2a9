package model

import "time"

// ---- Derived statistics ----

// StreakResult is the longest contiguous run of one outcome class in
// chronological order. A zero Count has zero Start and End dates.
type StreakResult struct {
	Count int
	Start time.Time
	End   time.Time
}

// Found reports whether any matching run was observed.
func (s StreakResult) Found() bool { return s.Count > 0 }

// AggregateRow holds totals for one grouping key (team, season, manager, ...)
// within a single computation.
type AggregateRow struct {
	Key     string
	Matches int

	Wins, Draws, Losses int

	GoalsFor, GoalsAgainst int

	// CleanSheetsFor counts matches where the opponent did not score;
	// CleanSheetsAgainst counts matches where this side did not score.
	CleanSheetsFor, CleanSheetsAgainst int

	PenaltyGoals, PenaltyMissed int

	Streak StreakResult
}

func (a *AggregateRow) GoalDiff() int {
	return a.GoalsFor - a.GoalsAgainst
}

func (a *AggregateRow) WinPct() float64 {
	if a.Matches == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.Matches) * 100
}

// Points uses three points for a win and one for a draw.
func (a *AggregateRow) Points() int {
	return a.Wins*3 + a.Draws
}

// Add folds one side's view of a match into the row.
func (a *AggregateRow) Add(v SideView) {
	a.Matches++
	switch v.Outcome {
	case Win:
		a.Wins++
	case Loss:
		a.Losses++
	default:
		a.Draws++
	}
	a.GoalsFor += v.GoalsFor
	a.GoalsAgainst += v.GoalsAgainst
	if v.CleanSheetFor() {
		a.CleanSheetsFor++
	}
	if v.CleanSheetAgainst() {
		a.CleanSheetsAgainst++
	}
}

// PlayerRow is the per-player breakdown built from lineup and detail rows.
type PlayerRow struct {
	Player  string
	Team    string
	Matches int
	Minutes int

	Goals, Assists int

	// Multi-goal / multi-assist matches, bucketed per match.
	Braces, HatTricks, FourPlusGoals             int
	AssistDoubles, AssistTriples, AssistFourPlus int

	PenaltyGoals, PenaltyMissed int
}

// GoalContributions is goals plus assists.
func (p *PlayerRow) GoalContributions() int {
	return p.Goals + p.Assists
}

func (p *PlayerRow) GoalsPerMatch() float64 {
	if p.Matches == 0 {
		return 0
	}
	return float64(p.Goals) / float64(p.Matches)
}

// PenaltyRow counts penalty outcomes for one taker.
type PenaltyRow struct {
	Player string
	Team   string
	Scored int
	Missed int
}

func (p *PenaltyRow) Taken() int { return p.Scored + p.Missed }

func (p *PenaltyRow) ConversionPct() float64 {
	if p.Taken() == 0 {
		return 0
	}
	return float64(p.Scored) / float64(p.Taken()) * 100
}
