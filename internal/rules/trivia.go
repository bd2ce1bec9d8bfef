package rules

import (
	"fmt"
	"strings"

	"partyhub/internal/domain"
)

// trivia walks the table through a fixed question list. A correct answer
// passes the turn; answering the final question wins the session.
type trivia struct{}

type question struct {
	q string
	a string
}

type triviaState struct {
	questions []question
	index     int
}

var triviaQuestions = []question{
	{q: "Capital of France?", a: "paris"},
	{q: "2 + 2?", a: "4"},
	{q: "Largest ocean?", a: "pacific"},
	{q: "Chemical symbol for gold?", a: "au"},
	{q: "How many continents are there?", a: "7"},
}

func (trivia) Kind() domain.GameKind { return domain.KindTrivia }

func (trivia) Limits() (min, max int) { return 2, 0 }

func (trivia) New(cfg Config) any {
	qs := make([]question, len(triviaQuestions))
	copy(qs, triviaQuestions)
	if cfg.Rng != nil {
		cfg.Rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	return &triviaState{questions: qs}
}

func (trivia) Prompt(state any) string {
	st := state.(*triviaState)
	if st.index >= len(st.questions) {
		return "No questions left."
	}
	return fmt.Sprintf("Question %d/%d: %s", st.index+1, len(st.questions), st.questions[st.index].q)
}

func (trivia) Validate(state any, player domain.Player, input string) Result {
	st := state.(*triviaState)
	if st.index >= len(st.questions) {
		return Result{Verdict: Terminal, State: st}
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	if answer != st.questions[st.index].a {
		return Result{Verdict: Rejected, Reason: "wrong answer"}
	}

	st.index++
	if st.index >= len(st.questions) {
		winner := player
		return Result{Verdict: Terminal, State: st, Winner: &winner}
	}
	return Result{Verdict: Accepted, State: st}
}
