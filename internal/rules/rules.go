package rules

import (
	"math/rand"

	"partyhub/internal/domain"
)

// Verdict classifies the result of validating one candidate move.
type Verdict int

const (
	// Accepted applies the new state and passes the turn.
	Accepted Verdict = iota
	// Rejected leaves the session untouched; the same player must retry.
	Rejected
	// Terminal ends the session immediately.
	Terminal
)

// Result is what a rule module reports back to the engine for one move.
type Result struct {
	Verdict Verdict

	// State is the rule state after the move. The engine stores it verbatim
	// when non-nil.
	State any

	// Reason explains a rejection to the acting player.
	Reason string

	// Winner is the winning player of a terminal result; nil means a draw.
	Winner *domain.Player
}

// Config carries the per-session knobs a rule module may consult when
// building its initial state.
type Config struct {
	Difficulty domain.Difficulty
	// Players in turn order at the moment the session goes active.
	Players []domain.Player
	Rng     *rand.Rand
}

// Module is the pluggable per-game-type contract. Implementations own their
// rule state; the engine only threads it through opaquely.
type Module interface {
	Kind() domain.GameKind

	// Limits returns the allowed player counts. max of 0 means unbounded.
	Limits() (min, max int)

	// New builds the initial rule state for a fresh session.
	New(cfg Config) any

	// Prompt renders the instruction for the acting player given the
	// current state.
	Prompt(state any) string

	// Validate judges a candidate move by the acting player.
	Validate(state any, player domain.Player, input string) Result
}

// registry is the closed set of hosted game kinds.
var registry = map[domain.GameKind]Module{
	domain.KindWordChain: &wordChain{},
	domain.KindTicTacToe: &ticTacToe{},
	domain.KindHangman:   &hangman{},
	domain.KindTrivia:    &trivia{},
}

// ForKind returns the module registered for a game kind.
func ForKind(k domain.GameKind) (Module, bool) {
	m, ok := registry[k]
	return m, ok
}
