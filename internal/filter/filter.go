// Package filter composes named field constraints into a single record
// predicate. Clauses combine with AND; an empty constraint never restricts.
package filter

import (
	"strings"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

// Kind selects how a clause compares a field against its constraint.
type Kind int

const (
	Equality Kind = iota
	Substring
	Set
	DateRange
	NumericRange
	OutcomeSet
)

func (k Kind) String() string {
	switch k {
	case Equality:
		return "equality"
	case Substring:
		return "substring"
	case Set:
		return "set"
	case DateRange:
		return "date"
	case NumericRange:
		return "range"
	case OutcomeSet:
		return "outcome"
	default:
		return "?"
	}
}

// ParseKind maps a configuration name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k := Equality; k <= OutcomeSet; k++ {
		if strings.EqualFold(k.String(), strings.TrimSpace(s)) {
			return k, true
		}
	}
	return Equality, false
}

// Clause is one named filter control bound to a canonical field.
type Clause struct {
	Key   string
	Field model.Field
	Kind  Kind
}

// Constraint is the selection for one clause. Which members apply depends on
// the clause kind.
type Constraint struct {
	Value  string
	Values []string

	From, To time.Time

	Min, Max       float64
	HasMin, HasMax bool
}

// Empty reports whether the constraint places no restriction.
func (c Constraint) Empty() bool {
	for _, v := range c.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return strings.TrimSpace(c.Value) == "" &&
		c.From.IsZero() && c.To.IsZero() && !c.HasMin && !c.HasMax
}

// FilterState maps clause key to the current selection.
type FilterState map[string]Constraint

// Predicate reports whether a record passes.
type Predicate func(model.Record) bool

// Engine holds the clause declarations for one record family.
type Engine struct {
	dict    *model.FieldDict
	clauses []Clause
}

// New returns an engine over records described by dict.
func New(dict *model.FieldDict, clauses ...Clause) *Engine {
	return &Engine{dict: dict, clauses: clauses}
}

// Dict returns the field dictionary the engine reads records through.
func (e *Engine) Dict() *model.FieldDict { return e.dict }

// Clauses returns the clause declarations in evaluation order.
func (e *Engine) Clauses() []Clause {
	out := make([]Clause, len(e.clauses))
	copy(out, e.clauses)
	return out
}

// Clause looks up a clause by key.
func (e *Engine) Clause(key string) (Clause, bool) {
	for _, c := range e.clauses {
		if c.Key == key {
			return c, true
		}
	}
	return Clause{}, false
}

// Compose builds the AND of every non-empty constraint in state. Keys with no
// declared clause are ignored.
func (e *Engine) Compose(state FilterState) Predicate {
	var checks []Predicate
	for _, c := range e.clauses {
		con, ok := state[c.Key]
		if !ok || con.Empty() {
			continue
		}
		checks = append(checks, e.matcher(c, con))
	}
	return func(r model.Record) bool {
		for _, check := range checks {
			if !check(r) {
				return false
			}
		}
		return true
	}
}

// Apply returns the records passing state, in their original order. It does
// not modify records and is safe on an empty slice.
func (e *Engine) Apply(records []model.Record, state FilterState) []model.Record {
	keep := e.Compose(state)
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) matcher(c Clause, con Constraint) Predicate {
	dict, field := e.dict, c.Field
	switch c.Kind {
	case Substring:
		want := model.Fold(strings.TrimSpace(con.Value))
		return func(r model.Record) bool {
			return strings.Contains(model.Fold(dict.Str(r, field)), want)
		}
	case Set:
		set := valueSet(con)
		return func(r model.Record) bool {
			_, ok := set[dict.Str(r, field)]
			return ok
		}
	case OutcomeSet:
		set := make(map[model.Outcome]struct{})
		for v := range valueSet(con) {
			if o := model.ParseOutcome(v); o != model.OutcomeUnknown {
				set[o] = struct{}{}
			}
		}
		return func(r model.Record) bool {
			_, ok := set[model.ParseOutcome(dict.Str(r, field))]
			return ok
		}
	case DateRange:
		from, to := con.From, con.To
		if from.IsZero() && to.IsZero() {
			return func(model.Record) bool { return true }
		}
		return func(r model.Record) bool {
			d, ok := dict.Date(r, field)
			if !ok {
				return false
			}
			if !from.IsZero() && d.Before(from) {
				return false
			}
			if !to.IsZero() && d.After(to) {
				return false
			}
			return true
		}
	case NumericRange:
		return func(r model.Record) bool {
			v, ok := dict.Float(r, field)
			if !ok {
				return false
			}
			if con.HasMin && v < con.Min {
				return false
			}
			if con.HasMax && v > con.Max {
				return false
			}
			return true
		}
	default:
		want := strings.TrimSpace(con.Value)
		if want == "" {
			return func(model.Record) bool { return true }
		}
		return func(r model.Record) bool {
			return dict.Str(r, field) == want
		}
	}
}

func valueSet(con Constraint) map[string]struct{} {
	set := make(map[string]struct{}, len(con.Values)+1)
	for _, v := range con.Values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	if v := strings.TrimSpace(con.Value); v != "" && len(set) == 0 {
		set[v] = struct{}{}
	}
	return set
}
