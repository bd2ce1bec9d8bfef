package rules

import (
	"fmt"
	"strings"

	"partyhub/internal/domain"
)

// hangman hosts a shared letter-guessing game. The tries budget is shared by
// the whole table; the player who reveals the final letter wins.
type hangman struct{}

type hangmanState struct {
	word    string
	guessed map[string]bool
	tries   int
}

var hangmanWords = map[domain.Difficulty][]string{
	domain.DifficultyEasy:   {"apple", "cat", "dog", "fish", "house"},
	domain.DifficultyMedium: {"banana", "monkey", "orange", "violin", "jungle"},
	domain.DifficultyHard:   {"xylophone", "umbrella", "elephant", "labyrinth"},
}

func (hangman) Kind() domain.GameKind { return domain.KindHangman }

func (hangman) Limits() (min, max int) { return 2, 0 }

func (hangman) New(cfg Config) any {
	words := hangmanWords[cfg.Difficulty]
	if len(words) == 0 {
		words = hangmanWords[domain.DifficultyEasy]
	}
	word := words[0]
	if cfg.Rng != nil {
		word = words[cfg.Rng.Intn(len(words))]
	}
	return &hangmanState{
		word:    word,
		guessed: make(map[string]bool),
		tries:   6,
	}
}

func (hangman) Prompt(state any) string {
	st := state.(*hangmanState)
	return fmt.Sprintf("Word: %s\nTries left: %d. Guess a letter.", st.display(), st.tries)
}

func (hangman) Validate(state any, player domain.Player, input string) Result {
	st := state.(*hangmanState)
	guess := strings.ToLower(strings.TrimSpace(input))
	if len(guess) != 1 || guess[0] < 'a' || guess[0] > 'z' {
		return Result{Verdict: Rejected, Reason: "guess a single letter"}
	}
	if st.guessed[guess] {
		return Result{Verdict: Rejected, Reason: fmt.Sprintf("%q was already guessed", guess)}
	}

	st.guessed[guess] = true
	if !strings.Contains(st.word, guess) {
		st.tries--
		if st.tries <= 0 {
			// Budget exhausted: nobody wins, the word is revealed by the
			// transport from the final prompt.
			return Result{Verdict: Terminal, State: st}
		}
		return Result{Verdict: Accepted, State: st}
	}

	if st.revealed() {
		winner := player
		return Result{Verdict: Terminal, State: st, Winner: &winner}
	}
	return Result{Verdict: Accepted, State: st}
}

func (st *hangmanState) revealed() bool {
	for _, c := range st.word {
		if !st.guessed[string(c)] {
			return false
		}
	}
	return true
}

func (st *hangmanState) display() string {
	var b strings.Builder
	for i, c := range st.word {
		if i > 0 {
			b.WriteString(" ")
		}
		if st.guessed[string(c)] {
			b.WriteRune(c)
		} else {
			b.WriteString("_")
		}
	}
	return b.String()
}

// Word exposes the hidden hangman word for terminal announcements.
func Word(state any) string {
	if st, ok := state.(*hangmanState); ok {
		return st.word
	}
	return ""
}
