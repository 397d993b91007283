package statistics

import (
	"math"
	"sync"
	"testing"

	"github.com/lox/pontoon/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsBasic(t *testing.T) {
	t.Parallel()
	s := New()

	results := []RoundResult{
		{Status: game.StatusWin, PlayerValue: 20, DealerValue: 18, PlayerCards: 2},
		{Status: game.StatusLoss, PlayerValue: 24, PlayerCards: 3, PlayerBust: true},
		{Status: game.StatusWin, PlayerValue: 15, DealerValue: 25, PlayerCards: 3, DealerBust: true},
		{Status: game.StatusTie, PlayerValue: 19, DealerValue: 19, PlayerCards: 2},
	}
	for i, r := range results {
		r.Round = i
		require.NoError(t, s.Add(r))
	}

	assert.Equal(t, 4, s.Rounds())
	assert.InDelta(t, 0.25, s.Mean(), 1e-9)

	// Values 1, -1, 1, 0: mean 0.25, sample variance 2.75/3
	assert.InDelta(t, 2.75/3, s.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(2.75/3), s.StdDev(), 1e-9)
	assert.InDelta(t, math.Sqrt(2.75/3)/2, s.StdError(), 1e-9)

	low, high := s.ConfidenceInterval95()
	assert.InDelta(t, 0.25-1.96*s.StdError(), low, 1e-9)
	assert.InDelta(t, 0.25+1.96*s.StdError(), high, 1e-9)

	r := s.Report()
	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 1, r.Losses)
	assert.Equal(t, 1, r.Ties)
	assert.Equal(t, 1, r.PlayerBusts)
	assert.Equal(t, 1, r.DealerBusts)
	assert.InDelta(t, 0.5, r.WinRate, 1e-9)
	assert.InDelta(t, 2.5, r.AvgPlayerCards, 1e-9)
	assert.Equal(t, map[int]int{15: 1, 19: 1, 20: 1, 22: 1}, r.PlayerTotals)
}

func TestStatisticsEmpty(t *testing.T) {
	t.Parallel()
	s := New()

	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdError())
	assert.Equal(t, "No rounds played", s.Summary())
}

func TestStatisticsRejectsInvalidStatus(t *testing.T) {
	t.Parallel()
	s := New()

	assert.Error(t, s.Add(RoundResult{Status: game.StatusSuccess}))
	assert.Zero(t, s.Rounds())
}

func TestStatisticsMerge(t *testing.T) {
	t.Parallel()
	a, b, all := New(), New(), New()

	for i := range 10 {
		r := RoundResult{Round: i, Status: game.StatusWin, PlayerValue: 20, PlayerCards: 2}
		if i%3 == 0 {
			r.Status, r.PlayerBust, r.PlayerValue = game.StatusLoss, true, 23
		}
		target := a
		if i%2 == 1 {
			target = b
		}
		require.NoError(t, target.Add(r))
		require.NoError(t, all.Add(r))
	}

	a.Merge(b)
	assert.Equal(t, all.Report(), a.Report())
}

func TestStatisticsConcurrentAdd(t *testing.T) {
	t.Parallel()
	s := New()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = s.Add(RoundResult{Status: game.StatusTie, PlayerValue: 18})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, s.Rounds())
	assert.Zero(t, s.Mean())
}

func TestSummary(t *testing.T) {
	t.Parallel()
	s := New()
	require.NoError(t, s.Add(RoundResult{Status: game.StatusWin, PlayerValue: 20, PlayerCards: 2}))
	require.NoError(t, s.Add(RoundResult{Status: game.StatusLoss, PlayerValue: 17, PlayerCards: 2}))

	summary := s.Summary()
	assert.Contains(t, summary, "Rounds: 2")
	assert.Contains(t, summary, "Wins: 1 (50.0%)")
	assert.Contains(t, summary, "95% CI")
}
