package rules

import (
	"strconv"
	"strings"

	"partyhub/internal/domain"
)

// ticTacToe hosts a 3x3 board for exactly two players. Moves are cell
// numbers 1-9, counted left to right, top to bottom.
type ticTacToe struct{}

type ticTacToeState struct {
	board [9]byte // 'X', 'O' or 0 for a free cell
	marks map[string]byte
}

var winCombos = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (ticTacToe) Kind() domain.GameKind { return domain.KindTicTacToe }

func (ticTacToe) Limits() (min, max int) { return 2, 2 }

func (ticTacToe) New(cfg Config) any {
	st := &ticTacToeState{marks: make(map[string]byte, 2)}
	symbols := []byte{'X', 'O'}
	for i, p := range cfg.Players {
		if i >= len(symbols) {
			break
		}
		st.marks[p.ID] = symbols[i]
	}
	return st
}

func (ticTacToe) Prompt(state any) string {
	st := state.(*ticTacToeState)
	return st.render() + "\nPick a free cell (1-9)."
}

func (ticTacToe) Validate(state any, player domain.Player, input string) Result {
	st := state.(*ticTacToeState)
	mark, ok := st.marks[player.ID]
	if !ok {
		return Result{Verdict: Rejected, Reason: "you are not seated at this board"}
	}

	cell, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || cell < 1 || cell > 9 {
		return Result{Verdict: Rejected, Reason: "pick a cell between 1 and 9"}
	}
	idx := cell - 1
	if st.board[idx] != 0 {
		return Result{Verdict: Rejected, Reason: "that cell is taken"}
	}

	st.board[idx] = mark
	if st.winner(mark) {
		winner := player
		return Result{Verdict: Terminal, State: st, Winner: &winner}
	}
	if st.full() {
		return Result{Verdict: Terminal, State: st}
	}
	return Result{Verdict: Accepted, State: st}
}

func (st *ticTacToeState) winner(mark byte) bool {
	for _, c := range winCombos {
		if st.board[c[0]] == mark && st.board[c[1]] == mark && st.board[c[2]] == mark {
			return true
		}
	}
	return false
}

func (st *ticTacToeState) full() bool {
	for _, c := range st.board {
		if c == 0 {
			return false
		}
	}
	return true
}

func (st *ticTacToeState) render() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				b.WriteString(" | ")
			}
			idx := row*3 + col
			if st.board[idx] == 0 {
				b.WriteString(strconv.Itoa(idx + 1))
			} else {
				b.WriteByte(st.board[idx])
			}
		}
	}
	return b.String()
}

// OpenCells lists the free cell numbers (1-9) of a tic-tac-toe state. Used
// by the automated opponent.
func OpenCells(state any) []int {
	st, ok := state.(*ticTacToeState)
	if !ok {
		return nil
	}
	var open []int
	for i, c := range st.board {
		if c == 0 {
			open = append(open, i+1)
		}
	}
	return open
}
