package rules

import (
	"fmt"
	"strings"

	"partyhub/internal/domain"
)

// wordChain hosts the word chain game: each word must start with the last
// letter of the previous word, no repeats, and the minimum word length
// escalates as rounds complete.
type wordChain struct{}

type wordChainState struct {
	used       map[string]bool
	lastLetter string // empty until the first word lands
	minLen     int
	step       int // minimum-length increase per completed round
	maxMinLen  int
	accepted   int // accepted moves since the session went active
	roundSize  int // player count at start; one round = roundSize accepted moves
}

func (wordChain) Kind() domain.GameKind { return domain.KindWordChain }

func (wordChain) Limits() (min, max int) { return 2, 0 }

func (wordChain) New(cfg Config) any {
	st := &wordChainState{
		used:      make(map[string]bool),
		minLen:    3,
		step:      1,
		maxMinLen: 7,
		roundSize: len(cfg.Players),
	}
	switch cfg.Difficulty {
	case domain.DifficultyMedium:
		st.minLen, st.maxMinLen = 4, 9
	case domain.DifficultyHard:
		st.minLen, st.step, st.maxMinLen = 5, 2, 12
	}
	if st.roundSize < 1 {
		st.roundSize = 1
	}
	return st
}

func (wordChain) Prompt(state any) string {
	st := state.(*wordChainState)
	if st.lastLetter == "" {
		return fmt.Sprintf("Type any word of at least %d letters.", st.minLen)
	}
	return fmt.Sprintf("Next word starts with %q and has at least %d letters.", st.lastLetter, st.minLen)
}

func (w wordChain) Validate(state any, player domain.Player, input string) Result {
	st := state.(*wordChainState)
	word := strings.ToLower(strings.TrimSpace(input))

	if !isLowerAlpha(word) {
		return Result{Verdict: Rejected, Reason: "words use letters only"}
	}
	if len(word) < st.minLen {
		return Result{Verdict: Rejected, Reason: fmt.Sprintf("word needs at least %d letters", st.minLen)}
	}
	if st.used[word] {
		return Result{Verdict: Rejected, Reason: "word already used"}
	}
	if st.lastLetter != "" && !strings.HasPrefix(word, st.lastLetter) {
		return Result{Verdict: Rejected, Reason: fmt.Sprintf("word must start with %q", st.lastLetter)}
	}

	st.used[word] = true
	st.lastLetter = word[len(word)-1:]
	st.accepted++
	if st.accepted%st.roundSize == 0 && st.minLen < st.maxMinLen {
		st.minLen += st.step
		if st.minLen > st.maxMinLen {
			st.minLen = st.maxMinLen
		}
	}
	return Result{Verdict: Accepted, State: st}
}

// ChainConstraint exposes the live word-chain constraint for automated
// opponents: the required starting letter (empty before the first word), the
// minimum length, and a used-word check.
func ChainConstraint(state any) (lastLetter string, minLen int, used func(string) bool, ok bool) {
	st, isChain := state.(*wordChainState)
	if !isChain {
		return "", 0, nil, false
	}
	return st.lastLetter, st.minLen, func(w string) bool { return st.used[w] }, true
}

func isLowerAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
