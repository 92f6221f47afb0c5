package game

import "pokerd/internal/eval"

// WinnersDetector finds the winners of a pot among its eligible players
type WinnersDetector struct {
	players *Players
}

// NewWinnersDetector creates a detector over the hand's registry
func NewWinnersDetector(players *Players) *WinnersDetector {
	return &WinnersDetector{players: players}
}

// Winners returns the pot players with the strongest score. Players that
// folded or were removed after the pot was built are skipped. Ties return
// every tied player, in seat order from the pot listing.
func (d *WinnersDetector) Winners(potPlayers []*Client, scores *Scores) ([]*Client, error) {
	var winners []*Client
	var best eval.Score

	for _, c := range potPlayers {
		active, err := d.players.IsActive(c.ID())
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}
		score, err := scores.PlayerScore(c.ID())
		if err != nil {
			return nil, err
		}

		if len(winners) == 0 {
			winners = []*Client{c}
			best = score
			continue
		}
		switch score.Cmp(best) {
		case 1:
			winners = []*Client{c}
			best = score
		case 0:
			winners = append(winners, c)
		}
	}
	return winners, nil
}
