package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"pokerd/internal/deck"
	"pokerd/internal/eval"
)

// Config carries the table parameters of a game
type Config struct {
	SmallBlind int
	BigBlind   int
	LowestRank deck.Rank
	Variant    eval.Variant
	BetTimeout time.Duration

	// Pacing delays keep hands watchable for human clients. Zero values
	// disable them.
	WaitAfterCards    time.Duration
	WaitAfterRound    time.Duration
	WaitAfterShowdown time.Duration
	WaitAfterWinner   time.Duration
}

// DefaultConfig returns the standard table parameters
func DefaultConfig() Config {
	return Config{
		SmallBlind:        10,
		BigBlind:          20,
		LowestRank:        deck.Two,
		Variant:           eval.Holdem,
		BetTimeout:        30 * time.Second,
		WaitAfterCards:    time.Second,
		WaitAfterRound:    time.Second,
		WaitAfterShowdown: 2 * time.Second,
		WaitAfterWinner:   2 * time.Second,
	}
}

// Holdem plays Texas Hold'em hands for a fixed set of players. A Holdem
// value runs one hand at a time; the room drives it hand after hand with a
// rotating dealer.
type Holdem struct {
	id          string
	cfg         Config
	players     *Players
	dispatcher  *Dispatcher
	deckFactory *deck.Factory
	detector    *eval.Detector
	betHandler  *BetHandler
	winners     *WinnersDetector
	clock       quartz.Clock
	logger      *log.Logger
}

// NewHoldem creates a game over the given players
func NewHoldem(id string, cfg Config, players *Players, deckFactory *deck.Factory, clock quartz.Clock, logger *log.Logger) *Holdem {
	logger = logger.WithPrefix("holdem").With("game", id)
	dispatcher := NewDispatcher(id, clock, logger)
	return &Holdem{
		id:          id,
		cfg:         cfg,
		players:     players,
		dispatcher:  dispatcher,
		deckFactory: deckFactory,
		detector:    eval.NewDetector(cfg.Variant, cfg.LowestRank),
		betHandler:  NewBetHandler(players, dispatcher, clock, logger, cfg.BetTimeout, cfg.WaitAfterRound),
		winners:     NewWinnersDetector(players),
		clock:       clock,
		logger:      logger,
	}
}

// ID returns the game id
func (g *Holdem) ID() string {
	return g.id
}

// Dispatcher returns the game's event dispatcher
func (g *Holdem) Dispatcher() *Dispatcher {
	return g.dispatcher
}

// Players returns the game's seat registry
func (g *Holdem) Players() *Players {
	return g.players
}

// PlayHand plays one complete hand with dealerID on the button. It returns
// an error only for failures fatal to the table; ordinary outcomes such as
// everyone folding end the hand normally. A game-over event is always the
// hand's final event.
func (g *Holdem) PlayHand(ctx context.Context, dealerID string) error {
	g.players.Reset()
	d := g.deckFactory.Create()
	scores := NewScores(g.detector)
	pots := NewPots(g.players)

	if err := g.removeBrokePlayers(ctx); err != nil {
		return err
	}

	g.dispatcher.Raise(ctx, NewHandEvent{
		GameID:     g.id,
		GameType:   g.cfg.Variant.String(),
		Players:    playerInfos(g.players.Active()),
		DealerID:   dealerID,
		SmallBlind: g.cfg.SmallBlind,
		BigBlind:   g.cfg.BigBlind,
	})
	defer g.dispatcher.Raise(ctx, GameOverEvent{})

	bets, err := g.collectBlinds(ctx, dealerID)
	if err != nil {
		return err
	}

	err = g.playStreets(ctx, dealerID, d, scores, pots, bets)
	if err != nil && !errors.Is(err, errHandEarly) {
		return err
	}
	return g.designateWinners(ctx, dealerID, pots, scores)
}

// playStreets runs the hand from the deal to the showdown. It returns
// errHandEarly as soon as fewer than two players remain active.
func (g *Holdem) playStreets(ctx context.Context, dealerID string, d *deck.Deck, scores *Scores, pots *Pots, bets map[string]int) error {
	if err := g.assignCards(ctx, dealerID, d, scores); err != nil {
		return err
	}
	if _, err := g.betHandler.BetRound(ctx, dealerID, bets, pots); err != nil {
		return err
	}
	if err := g.checkHandOver(); err != nil {
		return err
	}

	for _, reveal := range []int{3, 1, 1} {
		if err := g.addSharedCards(ctx, d, reveal, scores); err != nil {
			return err
		}
		if _, err := g.betHandler.BetRound(ctx, dealerID, map[string]int{}, pots); err != nil {
			return err
		}
		if err := g.checkHandOver(); err != nil {
			return err
		}
	}

	g.showdown(ctx, scores)
	return nil
}

// removeBrokePlayers drops every player that cannot cover the big blind
func (g *Holdem) removeBrokePlayers(ctx context.Context) error {
	for _, c := range g.players.Active() {
		if c.Money() < g.cfg.BigBlind {
			g.logger.Info("removing player unable to cover the big blind", "player", c.ID(), "money", c.Money())
			if err := g.players.Remove(c.ID()); err != nil {
				return err
			}
			g.dispatcher.Raise(ctx, DeadPlayerEvent{Player: c.Info()})
		}
	}
	if g.players.CountActive() < 2 {
		return ErrNotEnoughPlayers
	}
	return nil
}

// collectBlinds posts the blinds: the last active seat from the dealer
// pays the big blind, the one before it the small blind.
func (g *Holdem) collectBlinds(ctx context.Context, dealerID string) (map[string]int, error) {
	active, err := g.players.Round(dealerID, false)
	if err != nil {
		return nil, err
	}

	bets := make(map[string]int)
	blinds := []struct {
		client *Client
		amount int
	}{
		{active[len(active)-2], g.cfg.SmallBlind},
		{active[len(active)-1], g.cfg.BigBlind},
	}
	for _, blind := range blinds {
		if err := blind.client.TakeMoney(blind.amount); err != nil {
			return nil, fmt.Errorf("posting blind: %w", err)
		}
		bets[blind.client.ID()] = blind.amount
		g.dispatcher.Raise(ctx, BetEvent{
			Player:  blind.client.Info(),
			Bet:     blind.amount,
			BetType: BetBlind,
			Bets:    betsCopy(bets),
		})
	}
	return bets, nil
}

// assignCards deals two hole cards to every active player, dealer last
func (g *Holdem) assignCards(ctx context.Context, dealerID string, d *deck.Deck, scores *Scores) error {
	round, err := g.players.Round(dealerID, false)
	if err != nil {
		return err
	}
	for _, c := range round {
		cards, err := d.Pop(2)
		if err != nil {
			return err
		}
		scores.AssignCards(c.ID(), cards)
		score, err := scores.PlayerScore(c.ID())
		if err != nil {
			return err
		}
		g.dispatcher.Raise(ctx, CardsAssignmentEvent{
			TargetID: c.ID(),
			Cards:    cardsData(cards),
			Score:    scoreData(score),
		})
	}
	wait(ctx, g.clock, g.cfg.WaitAfterCards)
	return nil
}

// addSharedCards reveals the next street
func (g *Holdem) addSharedCards(ctx context.Context, d *deck.Deck, count int, scores *Scores) error {
	cards, err := d.Pop(count)
	if err != nil {
		return err
	}
	scores.AddShared(cards)
	g.dispatcher.Raise(ctx, SharedCardsEvent{Cards: cardsData(cards)})
	return nil
}

func (g *Holdem) checkHandOver() error {
	if g.players.CountActive() < 2 {
		return errHandEarly
	}
	return nil
}

// showdown reveals every remaining player's hand
func (g *Holdem) showdown(ctx context.Context, scores *Scores) {
	hands := make(map[string]ShowdownHand)
	for _, c := range g.players.Active() {
		score, err := scores.PlayerScore(c.ID())
		if err != nil {
			g.logger.Error("unscorable hand at showdown", "player", c.ID(), "error", err)
			continue
		}
		hands[c.ID()] = ShowdownHand{
			Cards: cardsData(scores.PlayerCards(c.ID())),
			Score: scoreData(score),
		}
	}
	g.dispatcher.Raise(ctx, ShowdownEvent{Players: hands})
	wait(ctx, g.clock, g.cfg.WaitAfterShowdown)
}

// designateWinners awards the pots, last pot first. Split pots divide
// evenly; a remainder goes to the earliest winner in action order after
// the dealer.
func (g *Holdem) designateWinners(ctx context.Context, dealerID string, pots *Pots, scores *Scores) error {
	all := pots.Pots()
	for i := len(all) - 1; i >= 0; i-- {
		pot := all[i]
		winners, err := g.winners.Winners(pot.Players(), scores)
		if err != nil {
			return err
		}
		if len(winners) == 0 {
			return fmt.Errorf("pot %d has no winners left", i)
		}

		split := pot.Money() / len(winners)
		remainder := pot.Money() - split*len(winners)
		winnerIDs := make([]string, 0, len(winners))
		for _, w := range winners {
			winnerIDs = append(winnerIDs, w.ID())
			if split > 0 {
				if err := w.AddMoney(split); err != nil {
					return err
				}
			}
		}
		if remainder > 0 {
			first, err := g.firstInActionOrder(dealerID, winners)
			if err != nil {
				return err
			}
			if err := first.AddMoney(remainder); err != nil {
				return err
			}
		}

		g.dispatcher.Raise(ctx, WinnerDesignationEvent{
			Pot: PotWinnersData{
				Money:      pot.Money(),
				WinnerIDs:  winnerIDs,
				MoneySplit: split,
			},
			UpcomingPots: potsData(all[:i]),
			Players:      playerInfoMap(g.players.Active()),
		})
		wait(ctx, g.clock, g.cfg.WaitAfterWinner)
	}
	return nil
}

// firstInActionOrder picks the candidate closest after the dealer
func (g *Holdem) firstInActionOrder(dealerID string, candidates []*Client) (*Client, error) {
	round, err := g.players.Round(dealerID, false)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		set[c.ID()] = true
	}
	for _, c := range round {
		if set[c.ID()] {
			return c, nil
		}
	}
	return candidates[0], nil
}
