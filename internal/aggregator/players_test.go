package aggregator

import (
	"testing"

	"github.com/pable/go-match-stats/internal/model"
)

var (
	detailDict = model.DetailFields()
	lineupDict = model.LineupFields()
)

func goal(match, player, team string) model.Record {
	return model.Record{"MATCH_ID": match, "PLAYER NAME": player, "TEAM": team, "GA": "GOAL"}
}

func assist(match, player, team string) model.Record {
	return model.Record{"MATCH_ID": match, "PLAYER NAME": player, "TEAM": team, "GA": "ASSIST"}
}

func lineup(match, player, team string, minutes int) model.Record {
	return model.Record{"MATCH_ID": match, "PLAYER NAME": player, "TEAM": team, "MINTOTAL": minutes}
}

func findPlayer(rows []model.PlayerRow, name string) *model.PlayerRow {
	for i := range rows {
		if rows[i].Player == name {
			return &rows[i]
		}
	}
	return nil
}

func TestPlayersBucketsPerMatch(t *testing.T) {
	details := []model.Record{
		goal("1", "Taher", "Ahly"), goal("1", "Taher", "Ahly"),
		goal("2", "Taher", "Ahly"), goal("2", "Taher", "Ahly"), goal("2", "Taher", "Ahly"),
		goal("3", "Taher", "Ahly"), goal("3", "Taher", "Ahly"), goal("3", "Taher", "Ahly"), goal("3", "Taher", "Ahly"), goal("3", "Taher", "Ahly"),
		goal("4", "Taher", "Ahly"),
		assist("1", "Maaloul", "Ahly"), assist("1", "Maaloul", "Ahly"),
		assist("2", "Maaloul", "Ahly"), assist("2", "Maaloul", "Ahly"), assist("2", "Maaloul", "Ahly"),
	}
	lineups := []model.Record{
		lineup("1", "Taher", "Ahly", 90), lineup("2", "Taher", "Ahly", 90),
		lineup("3", "Taher", "Ahly", 80), lineup("4", "Taher", "Ahly", 30), lineup("4", "Taher", "Ahly", 0),
		lineup("1", "Maaloul", "Ahly", 90), lineup("2", "Maaloul", "Ahly", 90),
	}

	rows := Players(lineups, lineupDict, details, detailDict, PlayerQuery{})
	taher := findPlayer(rows, "Taher")
	if taher == nil {
		t.Fatal("Taher missing")
	}
	if taher.Goals != 11 {
		t.Errorf("goals: want 11, got %d", taher.Goals)
	}
	if taher.Braces != 1 || taher.HatTricks != 1 || taher.FourPlusGoals != 1 {
		t.Errorf("buckets: braces=%d hat-tricks=%d 4+=%d", taher.Braces, taher.HatTricks, taher.FourPlusGoals)
	}
	if taher.Matches != 4 {
		t.Errorf("duplicate lineup row must not double count: want 4 matches, got %d", taher.Matches)
	}
	if taher.Minutes != 290 {
		t.Errorf("minutes: want 290, got %d", taher.Minutes)
	}
	maaloul := findPlayer(rows, "Maaloul")
	if maaloul == nil || maaloul.AssistDoubles != 1 || maaloul.AssistTriples != 1 || maaloul.Assists != 5 {
		t.Errorf("assist buckets wrong: %+v", maaloul)
	}
	if rows[0].Player != "Taher" {
		t.Errorf("want top scorer first, got %s", rows[0].Player)
	}
}

func TestPlayersTeamAttributionBySubstring(t *testing.T) {
	details := []model.Record{
		goal("1", "Taher", "AHLY (Egypt)"),
		goal("1", "Zizo", "Zamalek"),
	}
	rows := Players(nil, lineupDict, details, detailDict, PlayerQuery{Team: "ahly"})
	if len(rows) != 1 || rows[0].Player != "Taher" {
		t.Fatalf("want only Taher, got %+v", rows)
	}
	if rows[0].Matches != 1 {
		t.Errorf("without lineups matches fall back to scoring matches, got %d", rows[0].Matches)
	}

	scored, conceded := TeamGoals(details, detailDict, MatchSides(nil, nil, "ahly"))
	if scored != 1 || conceded != 1 {
		t.Errorf("TeamGoals: want 1-1, got %d-%d", scored, conceded)
	}
}

func TestPlayersWithAndAgainst(t *testing.T) {
	lineups := []model.Record{
		lineup("1", "Taher", "Ahly", 90), lineup("1", "Maaloul", "Ahly", 90), lineup("1", "Zizo", "Zamalek", 90),
		lineup("2", "Taher", "Ahly", 90), lineup("2", "Zizo", "Zamalek", 90),
		lineup("3", "Taher", "Ahly", 90), lineup("3", "Maaloul", "Ahly", 90), lineup("3", "Fathy", "Pyramids", 90),
	}
	details := []model.Record{goal("1", "Taher", "Ahly"), goal("2", "Taher", "Ahly"), goal("3", "Taher", "Ahly")}

	with := findPlayer(Players(lineups, lineupDict, details, detailDict, PlayerQuery{With: "maaloul"}), "Taher")
	if with == nil || with.Matches != 2 || with.Goals != 2 {
		t.Errorf("with Maaloul: %+v", with)
	}
	against := findPlayer(Players(lineups, lineupDict, details, detailDict, PlayerQuery{Against: "zizo"}), "Taher")
	if against == nil || against.Matches != 2 || against.Goals != 2 {
		t.Errorf("against Zizo: %+v", against)
	}
	both := findPlayer(Players(lineups, lineupDict, details, detailDict, PlayerQuery{With: "maaloul", Against: "zizo"}), "Taher")
	if both == nil || both.Matches != 1 || both.Goals != 1 {
		t.Errorf("with Maaloul and against Zizo should require both: %+v", both)
	}
}

func TestPenalties(t *testing.T) {
	details := []model.Record{
		{"MATCH_ID": "1", "PLAYER NAME": "Maaloul", "TEAM": "Ahly", "GA": "GOAL", "TYPE": "PENGOAL"},
		{"MATCH_ID": "2", "PLAYER NAME": "Maaloul", "TEAM": "Ahly", "TYPE": "PENMISSED"},
		{"MATCH_ID": "2", "PLAYER NAME": "Taher", "TEAM": "Ahly", "GA": "GOAL", "TYPE": "pengoal"},
		{"MATCH_ID": "3", "PLAYER NAME": "Zizo", "TEAM": "Zamalek", "GA": "GOAL", "TYPE": "PENGOAL"},
		{"MATCH_ID": "3", "PLAYER NAME": "Taher", "TEAM": "Ahly", "GA": "GOAL"},
	}
	rows := Penalties(details, detailDict, "ahly")
	if len(rows) != 2 {
		t.Fatalf("want 2 takers, got %+v", rows)
	}
	if rows[0].Player != "Maaloul" || rows[0].Scored != 1 || rows[0].Missed != 1 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[0].ConversionPct() != 50 {
		t.Errorf("conversion: want 50, got %f", rows[0].ConversionPct())
	}

	matches := []model.Record{
		{"MATCH_ID": "1", "SEASON": "2023"},
		{"MATCH_ID": "2", "SEASON": "2024"},
		{"MATCH_ID": "3", "SEASON": "2024"},
	}
	key := KeyField(matchDict, model.FieldSeason)
	grouped := GroupBy(matches, key, MatchReducer(matchDict, Primary))
	AttachPenalties(grouped, matches, matchDict, details, detailDict, key, "ahly")
	for _, g := range grouped {
		switch g.Key {
		case "2023":
			if g.PenaltyGoals != 1 || g.PenaltyMissed != 0 {
				t.Errorf("2023 penalties: %+v", g)
			}
		case "2024":
			if g.PenaltyGoals != 1 || g.PenaltyMissed != 1 {
				t.Errorf("2024 penalties: %+v", g)
			}
		}
	}
}

func TestAttributionWithoutPageTeam(t *testing.T) {
	matches := []model.Record{
		{"MATCH_ID": "1", "TEAM": "Ahly", "OPPONENT TEAM": "Zamalek", "GF": 1, "GA": 1, "RESULT": "D"},
	}
	details := []model.Record{
		{"MATCH_ID": "1", "PLAYER NAME": "Zizo", "TEAM": "Zamalek", "GA": "GOAL", "TYPE": "PENGOAL"},
		{"MATCH_ID": "1", "PLAYER NAME": "Taher", "TEAM": "Ahly", "GA": "GOAL"},
		{"MATCH_ID": "9", "PLAYER NAME": "Nobody", "TEAM": "Ahly", "GA": "GOAL"},
	}

	key := KeyField(matchDict, model.FieldOpponent)
	grouped := GroupBy(matches, key, MatchReducer(matchDict, Primary))
	AttachPenalties(grouped, matches, matchDict, details, detailDict, key, "")
	if len(grouped) != 1 {
		t.Fatalf("want one group, got %+v", grouped)
	}
	if grouped[0].PenaltyGoals != 0 {
		t.Errorf("opponent penalty counted for the stated side: %+v", grouped[0])
	}

	scored, conceded := TeamGoals(details, detailDict, MatchSides(matches, matchDict, ""))
	if scored != 1 || conceded != 1 {
		t.Errorf("TeamGoals without team: want 1-1, got %d-%d", scored, conceded)
	}
}

func TestH2HAttachGoals(t *testing.T) {
	matches := []model.Record{
		{"MATCH_ID": "1", "TEAM": "Ahly", "OPPONENT TEAM": "Zamalek", "RESULT": "W", "GF": 2, "GA": 1},
		{"MATCH_ID": "2", "TEAM": "Ahly", "OPPONENT TEAM": "Pyramids", "RESULT": "W", "GF": 1, "GA": 0},
	}
	details := []model.Record{
		goal("1", "Taher", "Ahly"), goal("1", "Kahraba", "Ahly"), goal("1", "Zizo", "Zamalek"),
		goal("2", "Taher", "Ahly"),
	}
	h := HeadToHead(matches, matchDict, "ahly", "zamalek")
	h.AttachGoals(details, detailDict, matchDict)
	if !h.HasEvents || h.EventsFor != 2 || h.EventsAgainst != 1 {
		t.Errorf("h2h goal events: %+v", h)
	}
}
