package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-match-stats/internal/model"
)

// H2H is the head-to-head record between two sides. Side is counted from A's
// perspective and Other from B's, so Other is always Side mirrored.
type H2H struct {
	Side    model.AggregateRow
	Other   model.AggregateRow
	Matches []model.Record

	// Goal events from detail rows, counted for Side. Set by AttachGoals.
	HasEvents                bool
	EventsFor, EventsAgainst int
}

// HeadToHead collects the fixtures between a and b. Team names are matched by
// case-insensitive substring in either orientation; a fixture written from
// b's side is mirrored before counting.
func HeadToHead(records []model.Record, dict *model.FieldDict, a, b string) H2H {
	h := H2H{
		Side:  model.AggregateRow{Key: a},
		Other: model.AggregateRow{Key: b},
	}
	for _, r := range records {
		team, opp := dict.Str(r, model.FieldTeam), dict.Str(r, model.FieldOpponent)
		var v model.SideView
		switch {
		case model.ContainsFold(team, a) && model.ContainsFold(opp, b):
			v = dict.Side(r)
		case model.ContainsFold(team, b) && model.ContainsFold(opp, a):
			v = Invert(dict, r)
		default:
			continue
		}
		h.Side.Add(v)
		h.Other.Add(v.Mirror())
		h.Matches = append(h.Matches, r)
	}
	return h
}

// AttributedTo reports whether a detail row's team text belongs to team. The
// sheets often append extra text to the team name, so containment is used.
func AttributedTo(detailTeam, team string) bool {
	return model.ContainsFold(detailTeam, team)
}

// SideFunc returns the team name the detail rows of one match are counted
// for, or "" when the match is unknown.
type SideFunc func(matchID string) string

// MatchSides attributes every match to team when it is set, and otherwise to
// the team field of the match record itself.
func MatchSides(matches []model.Record, mdict *model.FieldDict, team string) SideFunc {
	if team != "" {
		return func(string) string { return team }
	}
	sides := make(map[string]string, len(matches))
	for _, m := range matches {
		if id := mdict.Str(m, model.FieldMatchID); id != "" {
			sides[id] = mdict.Str(m, model.FieldTeam)
		}
	}
	return func(id string) string { return sides[id] }
}

func attributed(d model.Record, ddict *model.FieldDict, side SideFunc) (bool, bool) {
	s := side(ddict.Str(d, model.FieldMatchID))
	if s == "" {
		return false, false
	}
	return AttributedTo(ddict.Str(d, model.FieldTeam), s), true
}

// TeamGoals splits goal events into those scored by the side of their match
// and those scored against it. Events of unknown matches are skipped.
func TeamGoals(details []model.Record, dict *model.FieldDict, side SideFunc) (scored, conceded int) {
	for _, r := range details {
		if !isEvent(dict.Str(r, model.FieldEvent), model.EventGoal) {
			continue
		}
		ours, known := attributed(r, dict, side)
		switch {
		case !known:
		case ours:
			scored++
		default:
			conceded++
		}
	}
	return scored, conceded
}

// AttachGoals counts the goal events of h's fixtures for the stated side.
func (h *H2H) AttachGoals(details []model.Record, ddict *model.FieldDict, mdict *model.FieldDict) {
	ids := make(map[string]bool, len(h.Matches))
	for _, m := range h.Matches {
		if id := mdict.Str(m, model.FieldMatchID); id != "" {
			ids[id] = true
		}
	}
	var scoped []model.Record
	for _, d := range details {
		if ids[ddict.Str(d, model.FieldMatchID)] {
			scoped = append(scoped, d)
		}
	}
	h.HasEvents = true
	h.EventsFor, h.EventsAgainst = TeamGoals(scoped, ddict, MatchSides(nil, nil, h.Side.Key))
}

func isEvent(value, marker string) bool {
	return strings.EqualFold(strings.TrimSpace(value), marker)
}

// AttachPenalties adds the penalty goals and misses of the stated side to
// each grouped row, mapping detail rows to groups through the match
// identifier. An empty team attributes each match to its own team field.
func AttachPenalties(rows []model.AggregateRow, matches []model.Record, mdict *model.FieldDict, details []model.Record, ddict *model.FieldDict, key KeyFunc, team string) {
	groupOf := make(map[string]string, len(matches))
	for _, m := range matches {
		if id := mdict.Str(m, model.FieldMatchID); id != "" {
			groupOf[id] = key(m)
		}
	}
	index := make(map[string]int, len(rows))
	for i := range rows {
		index[rows[i].Key] = i
	}
	side := MatchSides(matches, mdict, team)
	for _, d := range details {
		if ours, _ := attributed(d, ddict, side); !ours {
			continue
		}
		i, ok := index[groupOf[ddict.Str(d, model.FieldMatchID)]]
		if !ok {
			continue
		}
		switch kind := ddict.Str(d, model.FieldEventType); {
		case isEvent(kind, model.PenaltyGoal):
			rows[i].PenaltyGoals++
		case isEvent(kind, model.PenaltyMissed):
			rows[i].PenaltyMissed++
		}
	}
}

// Penalties counts penalty goals and misses per taker, optionally limited to
// one team. Players who took none are omitted.
func Penalties(details []model.Record, dict *model.FieldDict, team string) []model.PenaltyRow {
	index := make(map[string]int)
	var rows []model.PenaltyRow
	for _, d := range details {
		player := dict.Str(d, model.FieldPlayer)
		side := dict.Str(d, model.FieldTeam)
		if player == "" || !AttributedTo(side, team) {
			continue
		}
		kind := dict.Str(d, model.FieldEventType)
		scored, missed := isEvent(kind, model.PenaltyGoal), isEvent(kind, model.PenaltyMissed)
		if !scored && !missed {
			continue
		}
		i, ok := index[player]
		if !ok {
			rows = append(rows, model.PenaltyRow{Player: player, Team: side})
			i = len(rows) - 1
			index[player] = i
		}
		if scored {
			rows[i].Scored++
		} else {
			rows[i].Missed++
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Taken() != rows[j].Taken() {
			return rows[i].Taken() > rows[j].Taken()
		}
		if rows[i].Scored != rows[j].Scored {
			return rows[i].Scored > rows[j].Scored
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}

// PlayerQuery narrows the player breakdown.
type PlayerQuery struct {
	// Team keeps appearances and events attributed to this team ("" = all).
	Team string
	// With keeps matches where a teammate matching this name was on the
	// player's side.
	With string
	// Against keeps matches where a player matching this name was on the
	// other side. When With and Against are both set a match must satisfy both.
	Against string
}

type playerMatch struct {
	player, match string
}

type appearance struct {
	player, team string
}

// Players builds the per-player breakdown. Goal and assist events are first
// grouped by (player, match) so that multi-goal matches can be bucketed into
// exactly 2, exactly 3 and 4-or-more.
func Players(lineups []model.Record, ldict *model.FieldDict, details []model.Record, ddict *model.FieldDict, q PlayerQuery) []model.PlayerRow {
	var allowed map[playerMatch]bool
	if q.With != "" || q.Against != "" {
		allowed = sharedMatches(lineups, ldict, q)
	}
	pass := func(pm playerMatch) bool {
		return allowed == nil || allowed[pm]
	}

	index := make(map[string]int)
	var rows []model.PlayerRow
	row := func(player, team string) *model.PlayerRow {
		i, ok := index[player]
		if !ok {
			rows = append(rows, model.PlayerRow{Player: player, Team: team})
			i = len(rows) - 1
			index[player] = i
		}
		return &rows[i]
	}

	seen := make(map[playerMatch]bool)
	for _, l := range lineups {
		pm := playerMatch{ldict.Str(l, model.FieldPlayer), ldict.Str(l, model.FieldMatchID)}
		team := ldict.Str(l, model.FieldTeam)
		if pm.player == "" || !AttributedTo(team, q.Team) || !pass(pm) {
			continue
		}
		p := row(pm.player, team)
		p.Minutes += ldict.Int(l, model.FieldMinutes)
		if !seen[pm] {
			seen[pm] = true
			p.Matches++
		}
	}

	type tally struct{ goals, assists int }
	perMatch := make(map[playerMatch]*tally)
	var order []playerMatch
	for _, d := range details {
		pm := playerMatch{ddict.Str(d, model.FieldPlayer), ddict.Str(d, model.FieldMatchID)}
		team := ddict.Str(d, model.FieldTeam)
		if pm.player == "" || !AttributedTo(team, q.Team) || !pass(pm) {
			continue
		}
		p := row(pm.player, team)
		switch kind := ddict.Str(d, model.FieldEventType); {
		case isEvent(kind, model.PenaltyGoal):
			p.PenaltyGoals++
		case isEvent(kind, model.PenaltyMissed):
			p.PenaltyMissed++
		}
		t, ok := perMatch[pm]
		if !ok {
			t = &tally{}
			perMatch[pm] = t
			order = append(order, pm)
		}
		switch event := ddict.Str(d, model.FieldEvent); {
		case isEvent(event, model.EventGoal):
			t.goals++
		case isEvent(event, model.EventAssist):
			t.assists++
		}
	}

	for _, pm := range order {
		t := perMatch[pm]
		p := &rows[index[pm.player]]
		p.Goals += t.goals
		p.Assists += t.assists
		switch {
		case t.goals >= 4:
			p.FourPlusGoals++
		case t.goals == 3:
			p.HatTricks++
		case t.goals == 2:
			p.Braces++
		}
		switch {
		case t.assists >= 4:
			p.AssistFourPlus++
		case t.assists == 3:
			p.AssistTriples++
		case t.assists == 2:
			p.AssistDoubles++
		}
		if len(lineups) == 0 && (t.goals > 0 || t.assists > 0) {
			p.Matches++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Goals != rows[j].Goals {
			return rows[i].Goals > rows[j].Goals
		}
		if rows[i].Assists != rows[j].Assists {
			return rows[i].Assists > rows[j].Assists
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}

// sharedMatches marks each (player, match) appearance that satisfies the
// With / Against constraints of q against the match roster.
func sharedMatches(lineups []model.Record, dict *model.FieldDict, q PlayerQuery) map[playerMatch]bool {
	rosters := make(map[string][]appearance)
	for _, l := range lineups {
		id := dict.Str(l, model.FieldMatchID)
		a := appearance{dict.Str(l, model.FieldPlayer), dict.Str(l, model.FieldTeam)}
		if id == "" || a.player == "" {
			continue
		}
		rosters[id] = append(rosters[id], a)
	}
	allowed := make(map[playerMatch]bool)
	for id, roster := range rosters {
		for _, me := range roster {
			withOK := q.With == ""
			againstOK := q.Against == ""
			for _, other := range roster {
				if other.player == me.player {
					continue
				}
				sameSide := model.Fold(other.team) == model.Fold(me.team)
				if !withOK && sameSide && model.ContainsFold(other.player, q.With) {
					withOK = true
				}
				if !againstOK && !sameSide && model.ContainsFold(other.player, q.Against) {
					againstOK = true
				}
			}
			if withOK && againstOK {
				allowed[playerMatch{me.player, id}] = true
			}
		}
	}
	return allowed
}
