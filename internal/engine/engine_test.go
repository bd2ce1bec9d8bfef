package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"partyhub/internal/domain"
	"partyhub/internal/rules"
)

// fakeTimer records one armed deadline. fire delivers the callback the way a
// real timer would; forceFire delivers it even after Stop, which models a
// callback already in flight when the cancel landed.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	dur     time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	fn := t.fn
	t.mu.Unlock()
	fn()
}

func (t *fakeTimer) forceFire() {
	t.mu.Lock()
	fn := t.fn
	t.fired = true
	t.mu.Unlock()
	fn()
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn, dur: d}
	c.timers = append(c.timers, t)
	return t
}

// last returns the most recently armed timer.
func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

// recorder captures emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) byKind(k EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// drain waits until every queued event-loop callback has run.
func (e *Engine) drain() { _ = e.do(func() error { return nil }) }

// snapshot copies the session state off the event-processing goroutine.
func snapshot(e *Engine, conversationID string) (domain.Session, bool) {
	var s domain.Session
	var ok bool
	_ = e.do(func() error {
		if live, exists := e.sessions.Get(conversationID); exists {
			s = *live
			ok = true
		}
		return nil
	})
	return s, ok
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *recorder) {
	t.Helper()
	clk := &fakeClock{}
	rec := &recorder{}
	e := New(Config{
		LobbyTimeout: 20 * time.Second,
		MinPlayers:   2,
		TurnTimeout: func(domain.GameKind, domain.Difficulty) time.Duration {
			return 30 * time.Second
		},
		BotsEnabled: true,
		BotMinDelay: time.Second,
		BotMaxDelay: time.Second,
		Clock:       clk,
		Notifier:    rec,
		Rng:         rand.New(rand.NewSource(42)),
	})
	t.Cleanup(e.Close)
	return e, clk, rec
}

func human(id string) domain.Player {
	return domain.Player{ID: id, DisplayName: id}
}

// startWordChain runs a lobby to promotion with the given players acting in
// the given order.
func startWordChain(t *testing.T, e *Engine, clk *fakeClock, conversationID string, ids ...string) {
	t.Helper()
	ctx := context.Background()
	if err := e.StartSession(ctx, conversationID, domain.KindWordChain, domain.DifficultyEasy, human(ids[0]), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for _, id := range ids[1:] {
		if err := e.Join(ctx, conversationID, human(id)); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}
	clk.last().fire()
	e.drain()

	s, ok := snapshot(e, conversationID)
	if !ok || s.Phase != domain.PhaseActive {
		t.Fatalf("session not active after lobby expiry")
	}
}

func TestStartSessionUnknownKind(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.StartSession(context.Background(), "c1", domain.GameKind("chess"), domain.DifficultyEasy, human("a"), false)
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestStartSessionRejectsSecond(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("first start: %v", err)
	}
	err := e.StartSession(ctx, "c1", domain.KindTrivia, domain.DifficultyEasy, human("b"), false)
	if !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}

	// A different conversation is unaffected.
	if err := e.StartSession(ctx, "c2", domain.KindTrivia, domain.DifficultyEasy, human("b"), false); err != nil {
		t.Fatalf("second conversation: %v", err)
	}
}

func TestLobbyCancelledBelowQuorum(t *testing.T) {
	e, clk, rec := newTestEngine(t)

	if err := e.StartSession(context.Background(), "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	clk.last().fire()
	e.drain()

	cancelled := rec.byKind(EventLobbyCancelled)
	if len(cancelled) != 1 {
		t.Fatalf("lobby_cancelled events = %d, want 1", len(cancelled))
	}
	p := cancelled[0].Payload.(LobbyCancelledPayload)
	if p.Joined != 1 || p.Needed != 2 {
		t.Fatalf("payload = %+v, want 1/2", p)
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("cancelled session should be removed")
	}

	// The slot frees up for a fresh start.
	if err := e.StartSession(context.Background(), "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("restart after cancel: %v", err)
	}
}

func TestLobbyPromotesAtQuorum(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	startWordChain(t, e, clk, "c1", "a", "b")

	if got := rec.byKind(EventGameStarted); len(got) != 1 {
		t.Fatalf("game_started events = %d, want 1", len(got))
	}
	prompts := rec.byKind(EventTurnPrompt)
	if len(prompts) != 1 {
		t.Fatalf("turn_prompt events = %d, want 1", len(prompts))
	}
	p := prompts[0].Payload.(TurnPromptPayload)
	if p.Player != "a" || p.Seconds != 30 {
		t.Fatalf("first prompt = %+v, want player a with 30s", p)
	}
}

func TestJoinDuplicateAndLateIgnored(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := e.Join(ctx, "c1", human("b")); err != nil {
		t.Fatalf("Join b: %v", err)
	}
	// The starter re-joining and b double-joining change nothing.
	if err := e.Join(ctx, "c1", human("a")); err != nil {
		t.Fatalf("duplicate join: %v", err)
	}
	if err := e.Join(ctx, "c1", human("b")); err != nil {
		t.Fatalf("duplicate join: %v", err)
	}
	if got := rec.byKind(EventPlayerJoined); len(got) != 1 {
		t.Fatalf("player_joined events = %d, want 1", len(got))
	}

	clk.last().fire()
	e.drain()

	// Joins after promotion are chatter.
	if err := e.Join(ctx, "c1", human("c")); err != nil {
		t.Fatalf("late join: %v", err)
	}
	s, _ := snapshot(e, "c1")
	if len(s.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(s.Players))
	}

	if err := e.Join(ctx, "nowhere", human("c")); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("join without session: %v, want ErrNoSession", err)
	}
}

func TestInputFromNonActingPlayersIgnored(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	ctx := context.Background()
	startWordChain(t, e, clk, "c1", "a", "b")

	// Out-of-turn and non-participant input leave the session untouched.
	if err := e.HandleInput(ctx, "c1", "b", "apple"); err != nil {
		t.Fatalf("out-of-turn input: %v", err)
	}
	if err := e.HandleInput(ctx, "c1", "stranger", "apple"); err != nil {
		t.Fatalf("non-participant input: %v", err)
	}
	s, _ := snapshot(e, "c1")
	if s.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want 0", s.CurrentTurn)
	}

	if err := e.HandleInput(ctx, "c1", "a", "apple"); err != nil {
		t.Fatalf("acting input: %v", err)
	}
	s, _ = snapshot(e, "c1")
	if s.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1 after accepted move", s.CurrentTurn)
	}
}

func TestRejectedMoveKeepsTurnAndTimer(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()
	startWordChain(t, e, clk, "c1", "a", "b")

	err := e.HandleInput(ctx, "c1", "a", "x7")
	if !errors.Is(err, domain.ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
	if got := rec.byKind(EventMoveRejected); len(got) != 1 {
		t.Fatalf("move_rejected events = %d, want 1", len(got))
	}
	s, _ := snapshot(e, "c1")
	if s.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want 0 after rejection", s.CurrentTurn)
	}

	// The original turn timer is still live: firing it eliminates the
	// player who kept failing.
	clk.last().fire()
	e.drain()
	elim := rec.byKind(EventPlayerEliminated)
	if len(elim) != 1 {
		t.Fatalf("player_eliminated events = %d, want 1", len(elim))
	}
	if p := elim[0].Payload.(PlayerEliminatedPayload); p.Player != "a" {
		t.Fatalf("eliminated = %s, want a", p.Player)
	}
}

func TestAcceptedMoveInvalidatesInFlightTimeout(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()
	startWordChain(t, e, clk, "c1", "a", "b")

	turnTimer := clk.last()
	if err := e.HandleInput(ctx, "c1", "a", "apple"); err != nil {
		t.Fatalf("move: %v", err)
	}

	// The old deadline callback was already in flight when the move landed.
	// Its sequence token no longer matches, so nobody is eliminated.
	turnTimer.forceFire()
	e.drain()

	if got := rec.byKind(EventPlayerEliminated); len(got) != 0 {
		t.Fatalf("player_eliminated events = %d, want 0", len(got))
	}
	s, _ := snapshot(e, "c1")
	if len(s.Players) != 2 || s.CurrentTurn != 1 {
		t.Fatalf("players = %d turn = %d, want 2 players on turn 1", len(s.Players), s.CurrentTurn)
	}
}

func TestTimeoutEliminationReclampsTurn(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()
	startWordChain(t, e, clk, "c1", "a", "b", "c")

	if err := e.HandleInput(ctx, "c1", "a", "apple"); err != nil {
		t.Fatalf("move: %v", err)
	}

	// b times out. The slot shift hands the turn straight to c.
	clk.last().fire()
	e.drain()

	elim := rec.byKind(EventPlayerEliminated)
	if len(elim) != 1 {
		t.Fatalf("player_eliminated events = %d, want 1", len(elim))
	}
	p := elim[0].Payload.(PlayerEliminatedPayload)
	if p.Player != "b" || p.Remaining != 2 {
		t.Fatalf("payload = %+v, want b out with 2 remaining", p)
	}

	s, _ := snapshot(e, "c1")
	if len(s.Players) != 2 || s.Players[s.CurrentTurn].ID != "c" {
		t.Fatalf("acting = %s of %d, want c of 2", s.Players[s.CurrentTurn].ID, len(s.Players))
	}
	prompts := rec.byKind(EventTurnPrompt)
	if last := prompts[len(prompts)-1].Payload.(TurnPromptPayload); last.Player != "c" {
		t.Fatalf("latest prompt for %s, want c", last.Player)
	}
}

func TestTimeoutDownToOneCrownsWinner(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	startWordChain(t, e, clk, "c1", "a", "b")

	clk.last().fire()
	e.drain()

	won := rec.byKind(EventGameWon)
	if len(won) != 1 {
		t.Fatalf("game_won events = %d, want 1", len(won))
	}
	p := won[0].Payload.(GameWonPayload)
	if p.Winner != "b" || p.TotalWins != 1 {
		t.Fatalf("payload = %+v, want b with 1 win", p)
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("finished session should be removed")
	}

	top := e.Leaderboard(5)
	if len(top) != 1 || top[0].PlayerID != "b" || top[0].Wins != 1 {
		t.Fatalf("leaderboard = %+v, want b with 1 win", top)
	}
}

func TestResetAuthorization(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	lobbyTimer := clk.last()

	if err := e.Reset(ctx, "c1", "stranger"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger reset: %v, want ErrUnauthorized", err)
	}
	if err := e.Reset(ctx, "c1", "a"); err != nil {
		t.Fatalf("participant reset: %v", err)
	}
	if got := rec.byKind(EventSessionReset); len(got) != 1 {
		t.Fatalf("session_reset events = %d, want 1", len(got))
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("reset session should be removed")
	}
	if err := e.Reset(ctx, "c1", "a"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("second reset: %v, want ErrNoSession", err)
	}

	// The lobby deadline that was in flight during the reset is stale.
	before := rec.count()
	lobbyTimer.forceFire()
	e.drain()
	if rec.count() != before {
		t.Fatalf("stale lobby timer emitted events")
	}
}

func TestSoloStartSkipsLobby(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindTicTacToe, domain.DifficultyEasy, human("a"), true); err != nil {
		t.Fatalf("solo start: %v", err)
	}
	if got := rec.byKind(EventLobbyOpened); len(got) != 0 {
		t.Fatalf("solo start opened a lobby")
	}
	s, ok := snapshot(e, "c1")
	if !ok || s.Phase != domain.PhaseActive {
		t.Fatalf("solo session should be active immediately")
	}
	if len(s.Players) != 2 || !s.Players[1].IsBot {
		t.Fatalf("players = %+v, want human plus opponent", s.Players)
	}

	// The human moves, then the opponent acts when its think delay fires.
	if err := e.HandleInput(ctx, "c1", "a", "5"); err != nil {
		t.Fatalf("human move: %v", err)
	}
	clk.last().fire()
	e.drain()

	s, _ = snapshot(e, "c1")
	if s.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want back to the human", s.CurrentTurn)
	}
	open := rules.OpenCells(s.RuleState)
	if len(open) != 7 {
		t.Fatalf("open cells = %d, want 7 after two marks", len(open))
	}
	prompts := rec.byKind(EventTurnPrompt)
	for _, ev := range prompts {
		if p := ev.Payload.(TurnPromptPayload); p.Player != "a" {
			t.Fatalf("opponent received a prompt: %+v", p)
		}
	}
}

func TestSoloUnavailableKinds(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	err := e.StartSession(ctx, "c1", domain.KindHangman, domain.DifficultyEasy, human("a"), true)
	if !errors.Is(err, ErrSoloUnavailable) {
		t.Fatalf("err = %v, want ErrSoloUnavailable", err)
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("failed solo start should leave no session behind")
	}
}

func TestTicTacToeWinFinishesSession(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindTicTacToe, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := e.Join(ctx, "c1", human("b")); err != nil {
		t.Fatalf("Join: %v", err)
	}
	clk.last().fire()
	e.drain()

	for _, mv := range []struct{ player, cell string }{
		{"a", "1"}, {"b", "4"}, {"a", "2"}, {"b", "5"}, {"a", "3"},
	} {
		if err := e.HandleInput(ctx, "c1", mv.player, mv.cell); err != nil {
			t.Fatalf("move %s by %s: %v", mv.cell, mv.player, err)
		}
	}

	won := rec.byKind(EventGameWon)
	if len(won) != 1 {
		t.Fatalf("game_won events = %d, want 1", len(won))
	}
	if p := won[0].Payload.(GameWonPayload); p.Winner != "a" {
		t.Fatalf("winner = %s, want a", p.Winner)
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("finished session should be removed")
	}
}

func TestHangmanExhaustionDrawsAndRevealsWord(t *testing.T) {
	e, clk, rec := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartSession(ctx, "c1", domain.KindHangman, domain.DifficultyEasy, human("a"), false); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := e.Join(ctx, "c1", human("b")); err != nil {
		t.Fatalf("Join: %v", err)
	}
	clk.last().fire()
	e.drain()

	s, _ := snapshot(e, "c1")
	word := rules.Word(s.RuleState)
	if word == "" {
		t.Fatalf("no word selected")
	}

	var misses []string
	for c := 'a'; c <= 'z' && len(misses) < 6; c++ {
		if !strings.ContainsRune(word, c) {
			misses = append(misses, string(c))
		}
	}
	players := []string{"a", "b"}
	for i, miss := range misses {
		if err := e.HandleInput(ctx, "c1", players[i%2], miss); err != nil {
			t.Fatalf("miss %q by %s: %v", miss, players[i%2], err)
		}
	}

	drawn := rec.byKind(EventGameDrawn)
	if len(drawn) != 1 {
		t.Fatalf("game_drawn events = %d, want 1", len(drawn))
	}
	if p := drawn[0].Payload.(GameDrawnPayload); !strings.Contains(p.Detail, word) {
		t.Fatalf("draw detail %q should reveal %q", p.Detail, word)
	}
	if _, ok := snapshot(e, "c1"); ok {
		t.Fatalf("finished session should be removed")
	}
}

func TestOperationsAfterClose(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Close()

	err := e.StartSession(context.Background(), "c1", domain.KindWordChain, domain.DifficultyEasy, human("a"), false)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
