package model

import (
	"sort"
	"time"
)

// Field is a canonical field name, independent of the raw spreadsheet header.
type Field string

// Match record fields.
const (
	FieldMatchID         Field = "match_id"
	FieldDate            Field = "date"
	FieldSeason          Field = "season"
	FieldChampionship    Field = "championship"
	FieldRound           Field = "round"
	FieldVenue           Field = "venue"
	FieldTeam            Field = "team"
	FieldOpponent        Field = "opponent"
	FieldGoalsFor        Field = "goals_for"
	FieldGoalsAgainst    Field = "goals_against"
	FieldResult          Field = "result"
	FieldManager         Field = "manager"
	FieldOpponentManager Field = "opponent_manager"
	FieldReferee         Field = "referee"
	FieldStadium         Field = "stadium"
)

// Detail and lineup record fields.
const (
	FieldPlayer    Field = "player"
	FieldEvent     Field = "event"
	FieldEventType Field = "event_type"
	FieldMinute    Field = "minute"
	FieldMinutes   Field = "minutes"
	FieldStatus    Field = "status"
)

// Detail event markers, compared case-insensitively.
const (
	EventGoal     = "GOAL"
	EventAssist   = "ASSIST"
	PenaltyGoal   = "PENGOAL"
	PenaltyMissed = "PENMISSED"
)

// FieldKey binds a canonical field to the raw header used by one data source.
type FieldKey struct {
	Field Field
	Key   string
}

// FieldDict is the ordered field dictionary of one record family. All record
// access downstream of the store goes through it; missing or blank fields
// resolve to "" / 0 rather than an error.
type FieldDict struct {
	order []Field
	raw   map[Field]string
}

// NewFieldDict builds a dictionary in declaration order. A later key for the
// same field replaces the earlier one without changing its position.
func NewFieldDict(keys ...FieldKey) *FieldDict {
	d := &FieldDict{raw: make(map[Field]string, len(keys))}
	for _, k := range keys {
		if _, seen := d.raw[k.Field]; !seen {
			d.order = append(d.order, k.Field)
		}
		d.raw[k.Field] = k.Key
	}
	return d
}

// MatchFields is the default dictionary for fixture rows.
func MatchFields() *FieldDict {
	return NewFieldDict(
		FieldKey{FieldMatchID, "MATCH_ID"},
		FieldKey{FieldDate, "DATE"},
		FieldKey{FieldSeason, "SEASON"},
		FieldKey{FieldChampionship, "CHAMPION"},
		FieldKey{FieldRound, "ROUND"},
		FieldKey{FieldVenue, "H-A-N"},
		FieldKey{FieldTeam, "TEAM"},
		FieldKey{FieldOpponent, "OPPONENT TEAM"},
		FieldKey{FieldGoalsFor, "GF"},
		FieldKey{FieldGoalsAgainst, "GA"},
		FieldKey{FieldResult, "RESULT"},
		FieldKey{FieldManager, "MANAGER"},
		FieldKey{FieldOpponentManager, "OPPONENT MANAGER"},
		FieldKey{FieldReferee, "REFREE"},
		FieldKey{FieldStadium, "STAD"},
	)
}

// DetailFields is the default dictionary for goal / assist / penalty rows.
func DetailFields() *FieldDict {
	return NewFieldDict(
		FieldKey{FieldMatchID, "MATCH_ID"},
		FieldKey{FieldPlayer, "PLAYER NAME"},
		FieldKey{FieldTeam, "TEAM"},
		FieldKey{FieldEvent, "GA"},
		FieldKey{FieldEventType, "TYPE"},
		FieldKey{FieldMinute, "MINUTE"},
	)
}

// LineupFields is the default dictionary for appearance rows.
func LineupFields() *FieldDict {
	return NewFieldDict(
		FieldKey{FieldMatchID, "MATCH_ID"},
		FieldKey{FieldPlayer, "PLAYER NAME"},
		FieldKey{FieldTeam, "TEAM"},
		FieldKey{FieldMinutes, "MINTOTAL"},
		FieldKey{FieldStatus, "STATU"},
	)
}

// WithOverrides returns a copy of d with raw keys replaced from overrides
// (canonical name → raw header). Unknown canonical names are appended in
// name order.
func (d *FieldDict) WithOverrides(overrides map[string]string) *FieldDict {
	keys := make([]FieldKey, 0, len(d.order)+len(overrides))
	for _, f := range d.order {
		keys = append(keys, FieldKey{f, d.raw[f]})
	}
	for _, f := range d.order {
		if raw, ok := overrides[string(f)]; ok {
			keys = append(keys, FieldKey{f, raw})
		}
	}
	var extra []string
	for name := range overrides {
		if _, known := d.raw[Field(name)]; !known {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		keys = append(keys, FieldKey{Field(name), overrides[name]})
	}
	return NewFieldDict(keys...)
}

// Fields returns the canonical fields in declaration order.
func (d *FieldDict) Fields() []Field {
	out := make([]Field, len(d.order))
	copy(out, d.order)
	return out
}

// Key returns the raw header for f, or "" if f is not declared.
func (d *FieldDict) Key(f Field) string {
	if d == nil {
		return ""
	}
	return d.raw[f]
}

// Str returns the trimmed text of field f.
func (d *FieldDict) Str(r Record, f Field) string {
	return r.String(d.Key(f))
}

// Int returns field f as an int, 0 when absent or non-numeric.
func (d *FieldDict) Int(r Record, f Field) int {
	return r.Int(d.Key(f))
}

// Float returns field f as a float and whether it was numeric.
func (d *FieldDict) Float(r Record, f Field) (float64, bool) {
	return r.Float(d.Key(f))
}

// Date parses field f as a day.
func (d *FieldDict) Date(r Record, f Field) (time.Time, bool) {
	return ParseDate(d.Str(r, f))
}

// Side returns the match from the record's own perspective. An unreadable
// result code is resolved from the goal pair.
func (d *FieldDict) Side(r Record) SideView {
	v := SideView{
		Outcome:      ParseOutcome(d.Str(r, FieldResult)),
		GoalsFor:     d.Int(r, FieldGoalsFor),
		GoalsAgainst: d.Int(r, FieldGoalsAgainst),
	}
	if v.Outcome == OutcomeUnknown {
		v.Outcome = OutcomeFromGoals(v.GoalsFor, v.GoalsAgainst)
	}
	return v
}
