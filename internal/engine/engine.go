// Package engine drives the session lifecycle: lobby formation, turn
// rotation under per-turn time budgets, timeout elimination, and outcome
// reporting to the leaderboard.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"partyhub/internal/bot"
	"partyhub/internal/domain"
	"partyhub/internal/store"
)

var (
	// ErrClosed is returned for operations submitted after shutdown.
	ErrClosed = errors.New("engine is shut down")
	// ErrSoloUnavailable rejects solo starts for kinds without an automated
	// opponent, or when opponents are disabled.
	ErrSoloUnavailable = errors.New("solo play is not available for this game")
)

// Notifier delivers engine events to the chat transport.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Config wires the engine's collaborators and timing knobs. Zero fields fall
// back to working defaults.
type Config struct {
	// LobbyTimeout is the join window before promotion or cancellation.
	LobbyTimeout time.Duration
	// MinPlayers is the quorum checked at lobby expiry.
	MinPlayers int
	// TurnTimeout resolves the per-turn budget for a session.
	TurnTimeout func(kind domain.GameKind, difficulty domain.Difficulty) time.Duration
	// BotsEnabled allows solo sessions against an automated opponent.
	BotsEnabled bool
	// BotMinDelay/BotMaxDelay bound the opponent's think delay.
	BotMinDelay time.Duration
	BotMaxDelay time.Duration

	Sessions    *store.SessionStore
	Leaderboard *store.LeaderboardStore
	Clock       Clock
	Notifier    Notifier
	Logger      runtime.Logger
	Rng         *rand.Rand
}

// Engine serializes every session mutation on one event-processing
// goroutine. Inbound operations and timer firings are queued onto it, so no
// two handlers for the same conversation ever run concurrently and session
// state needs no locks.
type Engine struct {
	cfg      Config
	sessions *store.SessionStore
	board    *store.LeaderboardStore
	clock    Clock
	notifier Notifier
	logger   runtime.Logger
	rng      *rand.Rand

	queue chan func()
	done  chan struct{}
	once  sync.Once

	// timers and agents are keyed by conversation id and touched only on
	// the event-processing goroutine.
	timers map[string]Timer
	agents map[string]bot.Agent
}

// New constructs an engine and starts its event-processing goroutine.
func New(cfg Config) *Engine {
	if cfg.LobbyTimeout <= 0 {
		cfg.LobbyTimeout = 20 * time.Second
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = 2
	}
	if cfg.TurnTimeout == nil {
		cfg.TurnTimeout = func(domain.GameKind, domain.Difficulty) time.Duration { return 30 * time.Second }
	}
	if cfg.BotMinDelay <= 0 {
		cfg.BotMinDelay = time.Second
	}
	if cfg.BotMaxDelay < cfg.BotMinDelay {
		cfg.BotMaxDelay = cfg.BotMinDelay
	}
	if cfg.Sessions == nil {
		cfg.Sessions = store.NewSessionStore()
	}
	if cfg.Leaderboard == nil {
		cfg.Leaderboard = store.NewLeaderboardStore()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		cfg:      cfg,
		sessions: cfg.Sessions,
		board:    cfg.Leaderboard,
		clock:    cfg.Clock,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		rng:      cfg.Rng,
		queue:    make(chan func(), 256),
		done:     make(chan struct{}),
		timers:   make(map[string]Timer),
		agents:   make(map[string]bot.Agent),
	}
	go e.run()
	return e
}

// Close stops the event-processing goroutine. Outstanding wall-clock timers
// that fire afterwards are dropped.
func (e *Engine) Close() {
	e.once.Do(func() { close(e.done) })
}

func (e *Engine) run() {
	for {
		select {
		case fn := <-e.queue:
			fn()
		case <-e.done:
			return
		}
	}
}

// do runs fn on the event-processing goroutine and waits for its result.
func (e *Engine) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case e.queue <- func() { errc <- fn() }:
	case <-e.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-e.done:
		return ErrClosed
	}
}

// post queues fn without waiting. Used by timer callbacks to marshal
// themselves back onto the event-processing goroutine.
func (e *Engine) post(fn func()) {
	select {
	case e.queue <- fn:
	case <-e.done:
	}
}

// StartSession handles a start command for a conversation. With solo set,
// the session skips the lobby and plays against an automated opponent.
func (e *Engine) StartSession(ctx context.Context, conversationID string, kind domain.GameKind, difficulty domain.Difficulty, starter domain.Player, solo bool) error {
	return e.do(func() error {
		return e.startSession(conversationID, kind, difficulty, starter, solo)
	})
}

// Join adds a player to a conversation's lobby. Duplicate joins are no-ops.
func (e *Engine) Join(ctx context.Context, conversationID string, p domain.Player) error {
	return e.do(func() error { return e.join(conversationID, p) })
}

// HandleInput routes a player's text to the acting session. Input from
// non-participants or out-of-turn players is silently ignored.
func (e *Engine) HandleInput(ctx context.Context, conversationID, playerID, text string) error {
	return e.do(func() error { return e.handleInput(conversationID, playerID, text) })
}

// Reset tears down a conversation's session on request of a participant.
func (e *Engine) Reset(ctx context.Context, conversationID, playerID string) error {
	return e.do(func() error { return e.reset(conversationID, playerID) })
}

// Leaderboard returns the ranked win counts.
func (e *Engine) Leaderboard(n int) []store.LeaderboardEntry {
	return e.board.Top(n)
}

// armTimer schedules the single outstanding timeout for a session. The
// armed sequence token is checked again when the callback lands back on the
// event-processing goroutine, so a cancelled or superseded timer is a no-op.
func (e *Engine) armTimer(s *domain.Session, d time.Duration, fire func(conversationID string, seq uint64)) {
	e.stopTimer(s.ConversationID)
	s.TimerSeq++
	seq := s.TimerSeq
	conversationID := s.ConversationID
	e.timers[conversationID] = e.clock.AfterFunc(d, func() {
		e.post(func() { fire(conversationID, seq) })
	})
}

// cancelTimer invalidates the session's outstanding timer. Invalidation must
// happen before any state mutation that assumes the turn is settled.
func (e *Engine) cancelTimer(s *domain.Session) {
	s.TimerSeq++
	e.stopTimer(s.ConversationID)
}

func (e *Engine) stopTimer(conversationID string) {
	if t, ok := e.timers[conversationID]; ok {
		t.Stop()
		delete(e.timers, conversationID)
	}
}

// endSession removes the session from the store and cancels its timer as one
// step; a stray firing afterwards fails the existence check and is dropped.
func (e *Engine) endSession(s *domain.Session) {
	e.cancelTimer(s)
	e.sessions.Remove(s.ConversationID)
	delete(e.agents, s.ConversationID)
}

func (e *Engine) notify(ev Event) {
	if err := e.notifier.Notify(context.Background(), ev); err != nil {
		e.logger.Error("notify %s failed for conversation %s: %v", ev.Kind, ev.ConversationID, err)
	}
}

func (e *Engine) botDelay() time.Duration {
	min, max := e.cfg.BotMinDelay, e.cfg.BotMaxDelay
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)+1))
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})                   {}
func (nopLogger) Info(string, ...interface{})                    {}
func (nopLogger) Warn(string, ...interface{})                    {}
func (nopLogger) Error(string, ...interface{})                   {}
func (l nopLogger) WithField(string, interface{}) runtime.Logger { return l }
func (l nopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return l
}
func (nopLogger) Fields() map[string]interface{} { return nil }
