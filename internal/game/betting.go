package game

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// FoldBet is the bet value a player sends to fold
const FoldBet = -1

// betFunc obtains a bet from the actor. The returned amount is either
// FoldBet or within [minBet, maxBet]. An error means the player could not
// act (timeout, broken channel) and must be removed.
type betFunc func(ctx context.Context, actor *Client, minBet, maxBet int, bets map[string]int) (int, error)

// onBetFunc observes a resolved action. betErr mirrors the betFunc error
// for removed players.
type onBetFunc func(ctx context.Context, actor *Client, bet, minBet int, bets map[string]int, betErr error)

// BetRounder walks the action around the table for one betting round
type BetRounder struct {
	players *Players
}

// NewBetRounder creates a rounder over the hand's registry
func NewBetRounder(players *Players) *BetRounder {
	return &BetRounder{players: players}
}

// Round runs one betting round starting from the dealer's seat. Action
// continues around the table until it returns to the last player who
// raised, or until at most one active player remains. bets carries the
// round's running per-player totals and is updated in place. The last
// raiser is returned; when nobody raised that is the round's first actor,
// whose turn coming around again ended the round.
func (r *BetRounder) Round(ctx context.Context, dealerID string, bets map[string]int, getBet betFunc, onBet onBetFunc) (*Client, error) {
	round, err := r.players.Round(dealerID, false)
	if err != nil {
		return nil, err
	}
	if len(round) == 0 {
		return nil, ErrNoActivePlayers
	}
	for i, c := range round {
		if _, ok := bets[c.ID()]; !ok {
			bets[c.ID()] = 0
		}
		if bets[c.ID()] < 0 || (i > 0 && bets[c.ID()] < bets[round[i-1].ID()]) {
			return nil, fmt.Errorf("invalid starting bets for player %s", c.ID())
		}
	}

	actor := round[0]
	var raiser *Client
	for actor != nil && actor != raiser {
		next, err := r.players.NextActive(actor.ID())
		if err != nil {
			return nil, err
		}

		minBet := r.minBet(actor, bets)
		maxBet := r.maxBet(actor, bets)

		var bet int
		var betErr error
		if maxBet <= 0 {
			bet = 0
		} else {
			bet, betErr = getBet(ctx, actor, minBet, maxBet, bets)
		}

		switch {
		case betErr != nil:
			if err := r.players.Remove(actor.ID()); err != nil {
				return nil, err
			}
		case bet == FoldBet:
			if err := r.players.Fold(actor.ID()); err != nil {
				return nil, err
			}
		default:
			if err := actor.TakeMoney(bet); err != nil {
				return nil, err
			}
			bets[actor.ID()] += bet
			if raiser == nil || bet > minBet {
				raiser = actor
			}
		}
		if onBet != nil {
			onBet(ctx, actor, bet, minBet, bets, betErr)
		}
		actor = next
	}
	return raiser, nil
}

// minBet is the amount the actor owes to call, capped by their stack
func (r *BetRounder) minBet(actor *Client, bets map[string]int) int {
	highest := 0
	for _, bet := range bets {
		if bet > highest {
			highest = bet
		}
	}
	return min(highest-bets[actor.ID()], actor.Money())
}

// maxBet caps a raise at the highest stake any other active player could
// still match, and at the actor's own stack.
func (r *BetRounder) maxBet(actor *Client, bets map[string]int) int {
	round, err := r.players.Round(actor.ID(), false)
	if err != nil {
		return 0
	}
	highestStake := 0
	for _, c := range round {
		if c == actor {
			continue
		}
		if stake := c.Money() + bets[c.ID()]; stake > highestStake {
			highestStake = stake
		}
	}
	return max(min(highestStake-bets[actor.ID()], actor.Money()), 0)
}

// BetHandler runs betting rounds against real players: it requests each
// action over the player's channel with a deadline, validates the reply,
// and settles the round's bets into the pots.
type BetHandler struct {
	players    *Players
	rounder    *BetRounder
	dispatcher *Dispatcher
	clock      quartz.Clock
	logger     *log.Logger

	betTimeout     time.Duration
	waitAfterRound time.Duration
}

// NewBetHandler creates a handler for one hand
func NewBetHandler(players *Players, dispatcher *Dispatcher, clock quartz.Clock, logger *log.Logger, betTimeout, waitAfterRound time.Duration) *BetHandler {
	return &BetHandler{
		players:        players,
		rounder:        NewBetRounder(players),
		dispatcher:     dispatcher,
		clock:          clock,
		logger:         logger,
		betTimeout:     betTimeout,
		waitAfterRound: waitAfterRound,
	}
}

// BetRound runs one betting round and folds its totals into the pots
func (h *BetHandler) BetRound(ctx context.Context, dealerID string, bets map[string]int, pots *Pots) (*Client, error) {
	raiser, err := h.rounder.Round(ctx, dealerID, bets, h.getBet, h.onBet)
	if err != nil {
		return nil, err
	}

	betTotal := 0
	for _, bet := range bets {
		betTotal += bet
	}
	if betTotal > 0 {
		if err := pots.AddBets(bets); err != nil {
			return nil, err
		}
		h.dispatcher.Raise(ctx, PotsUpdateEvent{
			Pots:    potsData(pots.Pots()),
			Players: playerInfoMap(h.players.Active()),
		})
		wait(ctx, h.clock, h.waitAfterRound)
	}
	return raiser, nil
}

// getBet requests an action from the player and waits for a valid reply.
// Invalid replies are answered with an error payload and a fresh request;
// the original deadline keeps running.
func (h *BetHandler) getBet(ctx context.Context, actor *Client, minBet, maxBet int, bets map[string]int) (int, error) {
	deadline := h.clock.Now().Add(h.betTimeout)
	request := BetActionEvent{
		Player:    actor.Info(),
		MinBet:    minBet,
		MaxBet:    maxBet,
		Bets:      betsCopy(bets),
		Timeout:   int(h.betTimeout / time.Second),
		TimeoutAt: deadline.UTC().Format(timeFormat),
	}
	h.dispatcher.Raise(ctx, request)

	for {
		msg, err := actor.Recv(ctx, deadline)
		if err != nil {
			return 0, err
		}
		if err := h.validateBet(msg, minBet, maxBet); err != nil {
			h.logger.Info("rejecting bet", "player", actor.ID(), "error", err)
			h.sendError(ctx, actor, err)
			h.dispatcher.Raise(ctx, request)
			continue
		}
		return *msg.Bet, nil
	}
}

func (h *BetHandler) validateBet(msg Message, minBet, maxBet int) error {
	if err := msg.Validate(MessageTypeBet); err != nil {
		return err
	}
	bet := *msg.Bet
	if bet != FoldBet && (bet < minBet || bet > maxBet) {
		return &FormatError{
			Attribute: "bet",
			Desc:      fmt.Sprintf("%d is out of range [%d, %d]", bet, minBet, maxBet),
		}
	}
	return nil
}

func (h *BetHandler) sendError(ctx context.Context, actor *Client, cause error) {
	type errorMessage struct {
		MessageType string `json:"message_type"`
		Error       string `json:"error"`
	}
	if err := actor.Send(ctx, errorMessage{MessageType: "error", Error: cause.Error()}); err != nil {
		h.logger.Warn("error payload not delivered", "player", actor.ID(), "error", err)
	}
}

// onBet announces the resolved action to the table
func (h *BetHandler) onBet(ctx context.Context, actor *Client, bet, minBet int, bets map[string]int, betErr error) {
	switch {
	case betErr != nil:
		h.logger.Info("player removed during betting", "player", actor.ID(), "error", betErr)
		h.dispatcher.Raise(ctx, DeadPlayerEvent{Player: actor.Info()})
	case bet == FoldBet:
		h.dispatcher.Raise(ctx, FoldEvent{Player: actor.Info()})
	default:
		h.dispatcher.Raise(ctx, BetEvent{
			Player:  actor.Info(),
			Bet:     bet,
			BetType: classifyBet(actor, bet, minBet),
			Bets:    betsCopy(bets),
		})
	}
}

// classifyBet names the action after the chips moved. The actor's stack is
// already reduced by the bet when this runs.
func classifyBet(actor *Client, bet, minBet int) BetType {
	switch {
	case actor.Money() == 0 && bet > 0:
		return BetAllIn
	case bet == 0:
		return BetCheck
	case bet > minBet:
		return BetRaise
	default:
		return BetCall
	}
}

// betsCopy snapshots the running bets for concurrent event delivery
func betsCopy(bets map[string]int) map[string]int {
	out := make(map[string]int, len(bets))
	for id, bet := range bets {
		out[id] = bet
	}
	return out
}

// wait sleeps for the pacing delay, returning early on context cancel
func wait(ctx context.Context, clock quartz.Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
