// Package bot provides automated opponents for solo sessions.
package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"partyhub/internal/domain"
	"partyhub/internal/rules"
)

// ErrNoMove means the agent cannot produce a legal move and forfeits.
var ErrNoMove = errors.New("no legal move available")

// Agent computes chat inputs for an automated opponent.
type Agent interface {
	Kind() domain.GameKind
	// Move returns the input the opponent sends for the current turn.
	Move(s *domain.Session) (string, error)
}

// NewAgent returns the opponent for a game kind, or an error for kinds
// without solo support.
func NewAgent(kind domain.GameKind, rng *rand.Rand) (Agent, error) {
	switch kind {
	case domain.KindTicTacToe:
		return &ticTacToeAgent{rng: rng}, nil
	case domain.KindWordChain:
		return &wordChainAgent{rng: rng}, nil
	default:
		return nil, fmt.Errorf("game kind %q has no automated opponent", kind)
	}
}

// ticTacToeAgent marks a random free cell.
type ticTacToeAgent struct {
	rng *rand.Rand
}

func (a *ticTacToeAgent) Kind() domain.GameKind { return domain.KindTicTacToe }

func (a *ticTacToeAgent) Move(s *domain.Session) (string, error) {
	open := rules.OpenCells(s.RuleState)
	if len(open) == 0 {
		return "", ErrNoMove
	}
	cell := open[0]
	if a.rng != nil {
		cell = open[a.rng.Intn(len(open))]
	}
	return strconv.Itoa(cell), nil
}

// wordChainAgent draws from a small built-in dictionary. It forfeits when no
// unused word satisfies the live constraint.
type wordChainAgent struct {
	rng *rand.Rand
}

var agentWords = []string{
	"apple", "ant", "angle", "banana", "ball", "cat", "car", "dog", "door",
	"elephant", "fish", "goat", "house", "ice", "jungle", "kite", "lion",
	"monkey", "night", "orange", "people", "queen", "river", "snake",
	"tiger", "umbrella", "violin", "water", "xylophone", "yacht", "zebra",
	"eagle", "engine", "rabbit", "turtle", "energy", "yellow", "window",
	"wonder", "reason", "nature", "empire", "escape", "temple", "throne",
}

func (a *wordChainAgent) Kind() domain.GameKind { return domain.KindWordChain }

func (a *wordChainAgent) Move(s *domain.Session) (string, error) {
	lastLetter, minLen, used, ok := rules.ChainConstraint(s.RuleState)
	if !ok {
		return "", ErrNoMove
	}

	var candidates []string
	for _, w := range agentWords {
		if len(w) < minLen || used(w) {
			continue
		}
		if lastLetter != "" && w[:1] != lastLetter {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return "", ErrNoMove
	}
	if a.rng == nil {
		return candidates[0], nil
	}
	return candidates[a.rng.Intn(len(candidates))], nil
}
