package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-match-stats/internal/model"
)

func rows() []model.Row {
	return []model.Row{
		{"2024-01-01", "Ahly", "Zamalek", "2-0"},
		{"2024-01-08", "Ahly", "Pyramids", "0-1"},
		{"2024-01-15", "Ahly", "Zamalek SC", "1-0"},
	}
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	got := Filter(rows(), "ZAMALEK")
	require.Len(t, got, 2)
	assert.Equal(t, "Zamalek", got[0][2])
	assert.Equal(t, "Zamalek SC", got[1][2])
}

func TestFilterMatchesAcrossDisplayedColumns(t *testing.T) {
	assert.Len(t, Filter(rows(), "pyramids 0-1"), 1)
	assert.Len(t, Filter(rows(), "2024-01"), 3)
	assert.Empty(t, Filter(rows(), "ismaily"))
}

func TestClearingSearchRestoresPreSearchSet(t *testing.T) {
	idx := New(rows())
	require.Len(t, idx.Filter("pyramids"), 1)
	require.Len(t, idx.Filter("zamalek"), 2, "a new query must start from the full set")
	assert.Equal(t, rows(), idx.Filter("  "))
	assert.Equal(t, 3, idx.Len())
}
