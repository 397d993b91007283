// Package statistics aggregates the results of simulated rounds.
package statistics

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/lox/pontoon/internal/game"
)

// RoundResult is the outcome of one simulated round.
type RoundResult struct {
	Round       int         // Round number in sequence
	Status      game.Status // win, loss or tie
	PlayerValue int         // Player's final total
	DealerValue int         // Dealer's final total (0 if the dealer never played)
	PlayerCards int         // Cards in the player's final hand
	PlayerBust  bool
	DealerBust  bool
}

// Net returns the round's result in betting units: +1, -1 or 0.
func (r RoundResult) Net() float64 {
	switch r.Status {
	case game.StatusWin:
		return 1
	case game.StatusLoss:
		return -1
	default:
		return 0
	}
}

// Statistics tracks results across many rounds. It is safe for concurrent use.
type Statistics struct {
	mu     sync.RWMutex
	rounds int
	sum    float64
	sum2   float64 // Sum of squares for variance

	wins        int
	losses      int
	ties        int
	playerBusts int
	dealerBusts int
	totalCards  int

	// Final player totals, bust totals collapsed into 22
	playerTotals map[int]int
}

// New returns empty statistics.
func New() *Statistics {
	return &Statistics{playerTotals: make(map[int]int)}
}

// Add records one round.
func (s *Statistics) Add(r RoundResult) error {
	switch r.Status {
	case game.StatusWin, game.StatusLoss, game.StatusTie:
	default:
		return fmt.Errorf("invalid round status: %q", r.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	net := r.Net()
	s.rounds++
	s.sum += net
	s.sum2 += net * net
	s.totalCards += r.PlayerCards

	switch r.Status {
	case game.StatusWin:
		s.wins++
	case game.StatusLoss:
		s.losses++
	case game.StatusTie:
		s.ties++
	}
	if r.PlayerBust {
		s.playerBusts++
	}
	if r.DealerBust {
		s.dealerBusts++
	}

	total := min(r.PlayerValue, game.BustThreshold+1)
	s.playerTotals[total]++
	return nil
}

// Merge adds other's rounds into s.
func (s *Statistics) Merge(other *Statistics) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rounds += other.rounds
	s.sum += other.sum
	s.sum2 += other.sum2
	s.wins += other.wins
	s.losses += other.losses
	s.ties += other.ties
	s.playerBusts += other.playerBusts
	s.dealerBusts += other.dealerBusts
	s.totalCards += other.totalCards
	for total, n := range other.playerTotals {
		s.playerTotals[total] += n
	}
}

// Rounds returns the number of rounds recorded.
func (s *Statistics) Rounds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rounds
}

// Mean returns the average net units per round.
func (s *Statistics) Mean() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mean()
}

func (s *Statistics) mean() float64 {
	if s.rounds == 0 {
		return 0
	}
	return s.sum / float64(s.rounds)
}

// Variance returns the sample variance
func (s *Statistics) Variance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variance()
}

func (s *Statistics) variance() float64 {
	if s.rounds < 2 {
		return 0
	}
	mean := s.mean()
	v := (s.sum2 - float64(s.rounds)*mean*mean) / float64(s.rounds-1)
	return math.Max(v, 0)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stdError()
}

func (s *Statistics) stdError() float64 {
	if s.rounds < 2 {
		return 0
	}
	return math.Sqrt(s.variance()) / math.Sqrt(float64(s.rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval of the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mean := s.mean()
	margin := 1.96 * s.stdError()
	return mean - margin, mean + margin
}

// Report is a point-in-time copy of the statistics, suitable for JSON.
type Report struct {
	Rounds         int         `json:"rounds"`
	Wins           int         `json:"wins"`
	Losses         int         `json:"losses"`
	Ties           int         `json:"ties"`
	PlayerBusts    int         `json:"player_busts"`
	DealerBusts    int         `json:"dealer_busts"`
	WinRate        float64     `json:"win_rate"`
	Mean           float64     `json:"mean"`
	StdDev         float64     `json:"std_dev"`
	StdError       float64     `json:"std_error"`
	CI95Low        float64     `json:"ci95_low"`
	CI95High       float64     `json:"ci95_high"`
	AvgPlayerCards float64     `json:"avg_player_cards"`
	PlayerTotals   map[int]int `json:"player_totals"`
}

// Report returns a snapshot of the current statistics.
func (s *Statistics) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := Report{
		Rounds:       s.rounds,
		Wins:         s.wins,
		Losses:       s.losses,
		Ties:         s.ties,
		PlayerBusts:  s.playerBusts,
		DealerBusts:  s.dealerBusts,
		Mean:         s.mean(),
		StdDev:       math.Sqrt(s.variance()),
		StdError:     s.stdError(),
		PlayerTotals: make(map[int]int, len(s.playerTotals)),
	}
	margin := 1.96 * r.StdError
	r.CI95Low, r.CI95High = r.Mean-margin, r.Mean+margin
	if s.rounds > 0 {
		r.WinRate = float64(s.wins) / float64(s.rounds)
		r.AvgPlayerCards = float64(s.totalCards) / float64(s.rounds)
	}
	for total, n := range s.playerTotals {
		r.PlayerTotals[total] = n
	}
	return r
}

// Summary returns a human-readable summary.
func (s *Statistics) Summary() string {
	r := s.Report()
	if r.Rounds == 0 {
		return "No rounds played"
	}

	pct := func(n int) float64 { return 100 * float64(n) / float64(r.Rounds) }

	var b strings.Builder
	fmt.Fprintf(&b, "Rounds: %d\n", r.Rounds)
	fmt.Fprintf(&b, "Wins: %d (%.1f%%)  Losses: %d (%.1f%%)  Ties: %d (%.1f%%)\n",
		r.Wins, pct(r.Wins), r.Losses, pct(r.Losses), r.Ties, pct(r.Ties))
	fmt.Fprintf(&b, "Player busts: %d (%.1f%%)  Dealer busts: %d (%.1f%%)\n",
		r.PlayerBusts, pct(r.PlayerBusts), r.DealerBusts, pct(r.DealerBusts))
	fmt.Fprintf(&b, "Mean: %+.4f units/round  StdDev: %.4f  StdErr: %.4f\n", r.Mean, r.StdDev, r.StdError)
	fmt.Fprintf(&b, "95%% CI: [%+.4f, %+.4f]\n", r.CI95Low, r.CI95High)
	fmt.Fprintf(&b, "Avg player cards: %.2f", r.AvgPlayerCards)
	return b.String()
}
