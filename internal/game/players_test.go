package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(clients []*Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.ID()
	}
	return out
}

func fourSeats(t *testing.T) *Players {
	t.Helper()
	ps, _ := newTestTable(t, map[string]int{"p1": 100, "p2": 100, "p3": 100, "p4": 100},
		"p1", "p2", "p3", "p4")
	return ps
}

func TestRoundSkipsFoldedPlayers(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p3"))

	round, err := ps.Round("p2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p4", "p1"}, ids(round))
}

func TestRoundReverse(t *testing.T) {
	ps := fourSeats(t)

	round, err := ps.Round("p2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1", "p4", "p3"}, ids(round))
}

func TestRoundUnknownStart(t *testing.T) {
	ps := fourSeats(t)
	_, err := ps.Round("nope", false)
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRoundFromFoldedStart(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p2"))

	round, err := ps.Round("p2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p4", "p1"}, ids(round))
}

func TestNextActiveWraps(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p1"))

	next, err := ps.NextActive("p4")
	require.NoError(t, err)
	assert.Equal(t, "p2", next.ID())
}

func TestNextActiveFromFoldedStart(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p1"))

	_, err := ps.NextActive("p1")
	assert.ErrorIs(t, err, ErrInactivePlayer)
}

func TestNextActiveFromRemovedStart(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Remove("p3"))

	_, err := ps.NextActive("p3")
	assert.ErrorIs(t, err, ErrInactivePlayer)
}

func TestNextActiveAlone(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p2"))
	require.NoError(t, ps.Fold("p3"))
	require.NoError(t, ps.Fold("p4"))

	next, err := ps.NextActive("p1")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestResetClearsFoldsNotDeaths(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p2"))
	require.NoError(t, ps.Remove("p3"))
	assert.Equal(t, 2, ps.CountActive())

	ps.Reset()
	assert.Equal(t, 3, ps.CountActive())
	assert.Equal(t, []string{"p1", "p2", "p4"}, ids(ps.Active()))

	// dead players stay listed for pot accounting only
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(ps.Seated()))
	assert.Equal(t, []string{"p1", "p2", "p4"}, ids(ps.All()))
}

func TestCountActiveWithMoney(t *testing.T) {
	ps, _ := newTestTable(t, map[string]int{"p1": 100, "p2": 0, "p3": 50}, "p1", "p2", "p3")
	assert.Equal(t, 3, ps.CountActive())
	assert.Equal(t, 2, ps.CountActiveWithMoney())
}

func TestFolders(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p4"))
	require.NoError(t, ps.Remove("p1"))

	assert.Equal(t, []string{"p1", "p4"}, ids(ps.Folders()))
}

func TestIsActive(t *testing.T) {
	ps := fourSeats(t)
	require.NoError(t, ps.Fold("p2"))

	active, err := ps.IsActive("p1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = ps.IsActive("p2")
	require.NoError(t, err)
	assert.False(t, active)

	_, err = ps.IsActive("ghost")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}
