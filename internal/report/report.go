package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-match-stats/internal/aggregator"
	"github.com/pable/go-match-stats/internal/model"
)

const dateLayout = "2006-01-02"

// Table is a formatted view: column headers, display rows and an optional
// totals footer. It is the hand-off between computation and the render
// adapters.
type Table struct {
	Title  string
	Header []string
	Rows   []model.Row
	Footer model.Row
}

// Len is the number of body rows.
func (t Table) Len() int { return len(t.Rows) }

// WithRows returns a copy of t showing rows instead.
func (t Table) WithRows(rows []model.Row) Table {
	t.Rows = rows
	return t
}

// AggregateHeader returns the column headers of an aggregate table keyed by
// keyHeader.
func AggregateHeader(keyHeader string, penalties bool) []string {
	h := []string{keyHeader, "M", "W", "D", "L", "GF", "GA", "GD", "CS_FOR", "CS_AGAINST", "WIN%", "PTS"}
	if penalties {
		h = append(h, "PEN_G", "PEN_M")
	}
	return append(h, "STREAK", "FROM", "TO")
}

// AggregateTable formats grouped rows. total, when non-nil, becomes the footer.
func AggregateTable(keyHeader string, rows []model.AggregateRow, total *model.AggregateRow, penalties bool) Table {
	t := Table{Title: keyHeader, Header: AggregateHeader(keyHeader, penalties)}
	t.Rows = make([]model.Row, 0, len(rows))
	for i := range rows {
		t.Rows = append(t.Rows, aggregateRow(&rows[i], penalties))
	}
	if total != nil {
		t.Footer = aggregateRow(total, penalties)
	}
	return t
}

func aggregateRow(a *model.AggregateRow, penalties bool) model.Row {
	row := model.Row{
		a.Key,
		strconv.Itoa(a.Matches),
		strconv.Itoa(a.Wins),
		strconv.Itoa(a.Draws),
		strconv.Itoa(a.Losses),
		strconv.Itoa(a.GoalsFor),
		strconv.Itoa(a.GoalsAgainst),
		signed(a.GoalDiff()),
		strconv.Itoa(a.CleanSheetsFor),
		strconv.Itoa(a.CleanSheetsAgainst),
		fmt.Sprintf("%.1f%%", a.WinPct()),
		strconv.Itoa(a.Points()),
	}
	if penalties {
		row = append(row, strconv.Itoa(a.PenaltyGoals), strconv.Itoa(a.PenaltyMissed))
	}
	return append(row, streakCells(a.Streak)...)
}

func streakCells(s model.StreakResult) []string {
	if !s.Found() {
		return []string{"0", "—", "—"}
	}
	return []string{strconv.Itoa(s.Count), s.Start.Format(dateLayout), s.End.Format(dateLayout)}
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// RecordTable lists records column by column in dictionary order, using the
// raw headers as column names.
func RecordTable(title string, records []model.Record, dict *model.FieldDict) Table {
	fields := dict.Fields()
	t := Table{Title: title, Header: make([]string, len(fields))}
	for i, f := range fields {
		t.Header[i] = dict.Key(f)
	}
	t.Rows = make([]model.Row, 0, len(records))
	for _, r := range records {
		row := make(model.Row, len(fields))
		for i, f := range fields {
			row[i] = dict.Str(r, f)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// PlayerTable formats the per-player breakdown.
func PlayerTable(rows []model.PlayerRow) Table {
	t := Table{
		Title: "players",
		Header: []string{
			"PLAYER", "TEAM", "M", "MIN", "G", "A", "G+A", "G/M",
			"2G", "3G", "4G+", "2A", "3A", "4A+", "PEN_G", "PEN_M",
		},
	}
	t.Rows = make([]model.Row, 0, len(rows))
	for i := range rows {
		p := &rows[i]
		t.Rows = append(t.Rows, model.Row{
			p.Player,
			p.Team,
			strconv.Itoa(p.Matches),
			strconv.Itoa(p.Minutes),
			strconv.Itoa(p.Goals),
			strconv.Itoa(p.Assists),
			strconv.Itoa(p.GoalContributions()),
			fmt.Sprintf("%.2f", p.GoalsPerMatch()),
			strconv.Itoa(p.Braces),
			strconv.Itoa(p.HatTricks),
			strconv.Itoa(p.FourPlusGoals),
			strconv.Itoa(p.AssistDoubles),
			strconv.Itoa(p.AssistTriples),
			strconv.Itoa(p.AssistFourPlus),
			strconv.Itoa(p.PenaltyGoals),
			strconv.Itoa(p.PenaltyMissed),
		})
	}
	return t
}

// PenaltyTable formats penalty takers.
func PenaltyTable(rows []model.PenaltyRow) Table {
	t := Table{Title: "penalties", Header: []string{"PLAYER", "TEAM", "TAKEN", "SCORED", "MISSED", "CONV%"}}
	t.Rows = make([]model.Row, 0, len(rows))
	var scored, missed int
	for i := range rows {
		p := &rows[i]
		scored += p.Scored
		missed += p.Missed
		t.Rows = append(t.Rows, model.Row{
			p.Player,
			p.Team,
			strconv.Itoa(p.Taken()),
			strconv.Itoa(p.Scored),
			strconv.Itoa(p.Missed),
			fmt.Sprintf("%.0f%%", p.ConversionPct()),
		})
	}
	if len(rows) > 0 {
		total := model.PenaltyRow{Player: "TOTAL", Scored: scored, Missed: missed}
		t.Footer = model.Row{"TOTAL", "", strconv.Itoa(total.Taken()), strconv.Itoa(scored), strconv.Itoa(missed), fmt.Sprintf("%.0f%%", total.ConversionPct())}
	}
	return t
}

// StreakTable formats the longest run of every streak class.
func StreakTable(reports []aggregator.StreakReport) Table {
	t := Table{Title: "streaks", Header: []string{"STREAK", "LENGTH", "FROM", "TO"}}
	t.Rows = make([]model.Row, 0, len(reports))
	for _, r := range reports {
		t.Rows = append(t.Rows, append(model.Row{r.Class.String()}, streakCells(r.Streak)...))
	}
	return t
}

// H2HTable formats a head-to-head record as two mirrored rows.
func H2HTable(h aggregator.H2H) Table {
	rows := []model.AggregateRow{h.Side, h.Other}
	return AggregateTable("SIDE", rows, nil, false)
}

// H2HGoals summarises the goal events of a head-to-head record, or returns
// "" when no detail records were attached.
func H2HGoals(h aggregator.H2H) string {
	if !h.HasEvents {
		return ""
	}
	return fmt.Sprintf("goal events: %s %d, %s %d", h.Side.Key, h.EventsFor, h.Other.Key, h.EventsAgainst)
}

// Print writes t to w as a text table.
func Print(w io.Writer, t Table) {
	table := newTable(w)
	table.Header(cells(t.Header)...)
	for _, r := range t.Rows {
		table.Append(cells(r)...)
	}
	if len(t.Footer) > 0 {
		table.Footer(cells(t.Footer)...)
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
