package model

import "strings"

// Outcome is a match result from one side's perspective.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	Win
	Draw
	Loss
)

// DrawMarkers are the literal result codes treated as a draw. The source
// sheets use a plain and an annotated marker for the same outcome.
var DrawMarkers = []string{"D", "D."}

// ParseOutcome reads a W/D/L result code. Both draw markers map to Draw.
func ParseOutcome(code string) Outcome {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "W":
		return Win
	case "L":
		return Loss
	}
	for _, m := range DrawMarkers {
		if code == m {
			return Draw
		}
	}
	return OutcomeUnknown
}

// OutcomeFromGoals derives the outcome from a for/against goal pair.
func OutcomeFromGoals(gf, ga int) Outcome {
	switch {
	case gf > ga:
		return Win
	case gf < ga:
		return Loss
	default:
		return Draw
	}
}

// Invert returns the outcome for the other side: W↔L, D unchanged.
func (o Outcome) Invert() Outcome {
	switch o {
	case Win:
		return Loss
	case Loss:
		return Win
	default:
		return o
	}
}

func (o Outcome) String() string {
	switch o {
	case Win:
		return "W"
	case Draw:
		return "D"
	case Loss:
		return "L"
	default:
		return "?"
	}
}

// SideView is one side's view of a two-sided match record.
type SideView struct {
	Outcome      Outcome
	GoalsFor     int
	GoalsAgainst int
}

// Mirror returns the implicit opponent's view of the same match.
func (v SideView) Mirror() SideView {
	return SideView{
		Outcome:      v.Outcome.Invert(),
		GoalsFor:     v.GoalsAgainst,
		GoalsAgainst: v.GoalsFor,
	}
}

// CleanSheetFor reports that the opponent did not score.
func (v SideView) CleanSheetFor() bool { return v.GoalsAgainst == 0 }

// CleanSheetAgainst reports that this side did not score.
func (v SideView) CleanSheetAgainst() bool { return v.GoalsFor == 0 }
