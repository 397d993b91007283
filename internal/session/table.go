// Package session owns the mapping from session ID to game. It serialises
// access to each game and evicts sessions that have been idle too long.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/sessionid"
)

var (
	// ErrNotFound is returned for unknown, expired or malformed session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrTableFull is returned when the session limit has been reached.
	ErrTableFull = errors.New("too many active sessions")
)

// Config controls session lifetime and capacity. Zero values disable the
// corresponding limit.
type Config struct {
	TTL         time.Duration
	MaxSessions int
}

// NewGameFunc builds the game for a new session.
type NewGameFunc func() *game.Game

type entry struct {
	mu       sync.Mutex
	game     *game.Game
	lastUsed time.Time
}

// Table maps session IDs to games.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	config  Config
	newGame NewGameFunc
	ids     *sessionid.Generator
	clock   quartz.Clock
	logger  *log.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithClock sets the clock used for idle tracking and sweeping.
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) { t.clock = clock }
}

// WithLogger sets the table's logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Table) { t.logger = logger.WithPrefix("sessions") }
}

// WithIDGenerator overrides how session IDs are generated.
func WithIDGenerator(g *sessionid.Generator) Option {
	return func(t *Table) { t.ids = g }
}

// NewTable creates an empty table. newGame is called once per session.
func NewTable(config Config, newGame NewGameFunc, opts ...Option) *Table {
	t := &Table{
		sessions: make(map[string]*entry),
		config:   config,
		newGame:  newGame,
		clock:    quartz.NewReal(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.ids == nil {
		t.ids = sessionid.NewGenerator(nil, t.clock)
	}
	return t
}

// Create starts a new game and registers it under a fresh ID.
func (t *Table) Create() (string, game.State, error) {
	t.mu.RLock()
	full := t.config.MaxSessions > 0 && len(t.sessions) >= t.config.MaxSessions
	t.mu.RUnlock()
	if full {
		return "", game.State{}, ErrTableFull
	}

	g := t.newGame()
	state, err := g.Start()
	if err != nil {
		return "", game.State{}, fmt.Errorf("starting game: %w", err)
	}

	id := t.ids.Generate()
	t.mu.Lock()
	if t.config.MaxSessions > 0 && len(t.sessions) >= t.config.MaxSessions {
		t.mu.Unlock()
		return "", game.State{}, ErrTableFull
	}
	t.sessions[id] = &entry{game: g, lastUsed: t.clock.Now()}
	count := len(t.sessions)
	t.mu.Unlock()

	t.logger.Debug("Session created", "session", id, "active", count)
	return id, state, nil
}

// Do runs fn against the session's game while holding that session's lock.
// Errors from fn are returned unchanged.
func (t *Table) Do(id string, fn func(*game.Game) error) error {
	if err := sessionid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t.mu.RLock()
	e, ok := t.sessions[id]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = t.clock.Now()
	return fn(e.game)
}

// Delete removes a session. It reports whether the session existed.
func (t *Table) Delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[id]
	delete(t.sessions, id)
	return ok
}

// Len returns the number of active sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions in use are skipped.
func (t *Table) Sweep() int {
	if t.config.TTL <= 0 {
		return 0
	}
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, e := range t.sessions {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.lastUsed)
		e.mu.Unlock()
		if idle > t.config.TTL {
			delete(t.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		t.logger.Info("Evicted idle sessions", "removed", removed, "active", len(t.sessions))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (t *Table) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || t.config.TTL <= 0 {
		<-ctx.Done()
		return
	}

	ticker := t.clock.NewTicker(interval, "session", "sweep")
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}
