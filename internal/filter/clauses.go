package filter

import (
	"strconv"
	"strings"

	"github.com/pable/go-match-stats/internal/model"
)

// DefaultMatchClauses are the filter controls of a match page, in the order
// they appear on the page.
func DefaultMatchClauses() []Clause {
	return []Clause{
		{Key: "season", Field: model.FieldSeason, Kind: Equality},
		{Key: "championship", Field: model.FieldChampionship, Kind: Equality},
		{Key: "round", Field: model.FieldRound, Kind: Equality},
		{Key: "venue", Field: model.FieldVenue, Kind: Set},
		{Key: "team", Field: model.FieldTeam, Kind: Substring},
		{Key: "opponent", Field: model.FieldOpponent, Kind: Substring},
		{Key: "manager", Field: model.FieldManager, Kind: Equality},
		{Key: "opponent_manager", Field: model.FieldOpponentManager, Kind: Equality},
		{Key: "referee", Field: model.FieldReferee, Kind: Equality},
		{Key: "stadium", Field: model.FieldStadium, Kind: Equality},
		{Key: "result", Field: model.FieldResult, Kind: OutcomeSet},
		{Key: "date", Field: model.FieldDate, Kind: DateRange},
		{Key: "goals_for", Field: model.FieldGoalsFor, Kind: NumericRange},
		{Key: "goals_against", Field: model.FieldGoalsAgainst, Kind: NumericRange},
	}
}

// DefaultDetailClauses filter goal / assist / penalty rows.
func DefaultDetailClauses() []Clause {
	return []Clause{
		{Key: "player", Field: model.FieldPlayer, Kind: Substring},
		{Key: "player_team", Field: model.FieldTeam, Kind: Substring},
		{Key: "event", Field: model.FieldEvent, Kind: Set},
		{Key: "event_type", Field: model.FieldEventType, Kind: Set},
	}
}

// DefaultLineupClauses filter appearance rows.
func DefaultLineupClauses() []Clause {
	return []Clause{
		{Key: "player", Field: model.FieldPlayer, Kind: Substring},
		{Key: "player_team", Field: model.FieldTeam, Kind: Substring},
		{Key: "status", Field: model.FieldStatus, Kind: Set},
	}
}

// rangeSep separates the lower and upper bound of a range control.
const rangeSep = ".."

// ParseConstraint converts the text of a filter control into a constraint for
// a clause of the given kind. Sets are comma separated; ranges are written
// "from..to" with either side optional, or a single value for both bounds.
// Unparseable bounds are dropped.
func ParseConstraint(kind Kind, raw string) Constraint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Constraint{}
	}
	switch kind {
	case Set, OutcomeSet:
		var c Constraint
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.Values = append(c.Values, part)
			}
		}
		return c
	case DateRange:
		lo, hi := splitRange(raw)
		var c Constraint
		if d, ok := model.ParseDate(lo); ok {
			c.From = d
		}
		if d, ok := model.ParseDate(hi); ok {
			c.To = d
		}
		return c
	case NumericRange:
		lo, hi := splitRange(raw)
		var c Constraint
		if v, err := strconv.ParseFloat(lo, 64); err == nil {
			c.Min, c.HasMin = v, true
		}
		if v, err := strconv.ParseFloat(hi, 64); err == nil {
			c.Max, c.HasMax = v, true
		}
		return c
	default:
		return Constraint{Value: raw}
	}
}

func splitRange(raw string) (string, string) {
	lo, hi, found := strings.Cut(raw, rangeSep)
	if !found {
		return raw, raw
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi)
}

// IDSet collects the non-empty values of field across records. It is the
// first half of the two-stage filter: primary records → allowed identifiers.
func IDSet(records []model.Record, dict *model.FieldDict, field model.Field) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if id := dict.Str(r, field); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// FilterByIDs keeps the secondary records whose field value is in ids.
func FilterByIDs(records []model.Record, dict *model.FieldDict, field model.Field, ids map[string]struct{}) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if _, ok := ids[dict.Str(r, field)]; ok {
			out = append(out, r)
		}
	}
	return out
}
