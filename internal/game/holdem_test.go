package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerd/internal/deck"
	"pokerd/internal/eval"
	"pokerd/internal/randutil"
)

func testGameConfig() Config {
	cfg := DefaultConfig()
	cfg.BetTimeout = 5 * time.Second
	cfg.WaitAfterCards = 0
	cfg.WaitAfterRound = 0
	cfg.WaitAfterShowdown = 0
	cfg.WaitAfterWinner = 0
	return cfg
}

func newTestHoldem(t *testing.T, money map[string]int, order ...string) (*Holdem, map[string]*fakeChannel, *eventRecorder) {
	t.Helper()
	ps, channels := newTestTable(t, money, order...)
	cfg := testGameConfig()
	g := NewHoldem("game-1", cfg, ps, deck.NewFactory(cfg.LowestRank, randutil.New(11)), quartz.NewReal(), testLogger())

	recorder := &eventRecorder{}
	g.Dispatcher().Subscribe(recorder)
	return g, channels, recorder
}

func totalMoney(ps *Players) int {
	total := 0
	for _, c := range ps.Seated() {
		total += c.Money()
	}
	return total
}

func TestPlayHandEveryoneCalls(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000, "p3": 1000}, "p1", "p2", "p3")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	kinds := recorder.kinds()
	require.NotEmpty(t, kinds)
	assert.Equal(t, EventNewHand, kinds[0])
	assert.Equal(t, EventGameOver, kinds[len(kinds)-1])

	// blinds, hole cards for three players, three streets of shared cards
	blinds := recorder.ofKind(EventBet)[:2]
	assert.Equal(t, BetBlind, blinds[0].Payload.(BetEvent).BetType)
	assert.Equal(t, BetBlind, blinds[1].Payload.(BetEvent).BetType)
	assert.Len(t, recorder.ofKind(EventCardsAssignment), 3)
	assert.Len(t, recorder.ofKind(EventSharedCards), 3)
	assert.Len(t, recorder.ofKind(EventShowdown), 1)
	assert.NotEmpty(t, recorder.ofKind(EventWinnerDesignation))

	// chips only move between players
	assert.Equal(t, 3000, totalMoney(g.Players()))
}

func TestPlayHandBlindSeats(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000, "p3": 1000, "p4": 1000},
		"p1", "p2", "p3", "p4")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p2"))

	// from dealer p2 the last two active seats are p4 and p1
	blinds := recorder.ofKind(EventBet)[:2]
	small := blinds[0].Payload.(BetEvent)
	big := blinds[1].Payload.(BetEvent)
	assert.Equal(t, "p4", small.Player.ID)
	assert.Equal(t, g.cfg.SmallBlind, small.Bet)
	assert.Equal(t, "p1", big.Player.ID)
	assert.Equal(t, g.cfg.BigBlind, big.Bet)
}

func TestPlayHandHeadsUpDealerPostsSmallBlind(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000}, "p1", "p2")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	blinds := recorder.ofKind(EventBet)[:2]
	assert.Equal(t, "p1", blinds[0].Payload.(BetEvent).Player.ID)
	assert.Equal(t, "p2", blinds[1].Payload.(BetEvent).Player.ID)
}

func TestPlayHandEndsWhenAllFold(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000, "p3": 1000}, "p1", "p2", "p3")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet: func(actor string, minBet, _ int) int {
			if actor == "p3" {
				return minBet
			}
			return FoldBet
		},
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	// no streets are dealt once only one player remains
	assert.Empty(t, recorder.ofKind(EventSharedCards))
	assert.Empty(t, recorder.ofKind(EventShowdown))
	assert.Equal(t, EventGameOver, recorder.kinds()[len(recorder.kinds())-1])

	// p3 collects the blinds without showing cards
	winners := recorder.ofKind(EventWinnerDesignation)
	require.Len(t, winners, 1)
	payload := winners[0].Payload.(WinnerDesignationEvent)
	assert.Equal(t, []string{"p3"}, payload.Pot.WinnerIDs)

	p3, _ := g.Players().Get("p3")
	assert.Equal(t, 1000+g.cfg.SmallBlind, p3.Money())
	assert.Equal(t, 3000, totalMoney(g.Players()))
}

func TestPlayHandRemovesPlayersBelowBigBlind(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 5, "p3": 1000}, "p1", "p2", "p3")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	dead := recorder.ofKind(EventDeadPlayer)
	require.Len(t, dead, 1)
	assert.Equal(t, "p2", dead[0].Payload.(DeadPlayerEvent).Player.ID)
	assert.Len(t, recorder.ofKind(EventCardsAssignment), 2)
}

func TestPlayHandFailsWithOnePlayer(t *testing.T) {
	g, _, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 5}, "p1", "p2")

	err := g.PlayHand(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Empty(t, recorder.ofKind(EventNewHand))
}

func TestPlayHandTimeoutRemovesPlayer(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000, "p3": 1000}, "p1", "p2", "p3")
	g.betHandler.betTimeout = 20 * time.Millisecond
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	// p2 stops answering
	delete(channels, "p2")

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	dead := recorder.ofKind(EventDeadPlayer)
	require.Len(t, dead, 1)
	assert.Equal(t, "p2", dead[0].Payload.(DeadPlayerEvent).Player.ID)
	assert.Equal(t, 3000, totalMoney(g.Players()))
}

func TestPlayHandCardsAssignmentsAreTargeted(t *testing.T) {
	g, channels, recorder := newTestHoldem(t,
		map[string]int{"p1": 1000, "p2": 1000}, "p1", "p2")
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	for _, env := range recorder.ofKind(EventCardsAssignment) {
		payload := env.Payload.(CardsAssignmentEvent)
		assert.Equal(t, payload.TargetID, env.Target())
		assert.Len(t, payload.Cards, 2)
	}
}

func TestPlayHandTraditionalVariant(t *testing.T) {
	ps, channels := newTestTable(t, map[string]int{"p1": 1000, "p2": 1000}, "p1", "p2")
	cfg := testGameConfig()
	cfg.Variant = eval.Traditional
	cfg.LowestRank = deck.Seven
	g := NewHoldem("game-t", cfg, ps, deck.NewFactory(cfg.LowestRank, randutil.New(5)), quartz.NewReal(), testLogger())

	recorder := &eventRecorder{}
	g.Dispatcher().Subscribe(recorder)
	g.Dispatcher().Subscribe(&autoResponder{
		channels: channels,
		bet:      func(_ string, minBet, _ int) int { return minBet },
	})

	require.NoError(t, g.PlayHand(context.Background(), "p1"))

	newHand := recorder.ofKind(EventNewHand)
	require.Len(t, newHand, 1)
	assert.Equal(t, "traditional", newHand[0].Payload.(NewHandEvent).GameType)
	assert.Equal(t, 2000, totalMoney(g.Players()))
}
