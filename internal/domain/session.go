package domain

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseActive is the state where turns rotate among players.
	PhaseActive Phase = "active"
	// PhaseFinished is the terminal state after a win, draw or cancellation.
	PhaseFinished Phase = "finished"
)

// GameKind selects which rule module drives a session.
type GameKind string

const (
	KindWordChain GameKind = "wordchain"
	KindTicTacToe GameKind = "tictactoe"
	KindHangman   GameKind = "hangman"
	KindTrivia    GameKind = "trivia"
)

// Valid reports whether k names one of the hosted game kinds.
func (k GameKind) Valid() bool {
	switch k {
	case KindWordChain, KindTicTacToe, KindHangman, KindTrivia:
		return true
	}
	return false
}

// Difficulty tunes turn budgets and rule-module strictness.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a recognized difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Player identifies a participant in a session. Immutable once recorded.
type Player struct {
	ID          string
	DisplayName string
	IsBot       bool
}

// Session holds the authoritative state for one conversation's game.
type Session struct {
	ConversationID string
	Kind           GameKind
	Difficulty     Difficulty
	Phase          Phase

	// Players in join order; join order is turn order.
	Players []Player

	// CurrentTurn indexes Players and is only meaningful while PhaseActive
	// with a non-empty player list.
	CurrentTurn int

	// RuleState is owned and mutated exclusively by the rule module.
	RuleState any

	// TimerSeq is the validity token for the single outstanding timer armed
	// for this session. Incrementing it invalidates any in-flight firing.
	TimerSeq uint64
}

// PlayerIndex returns the index of the player with the given id, or -1.
func (s *Session) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether the given id is a session participant.
func (s *Session) HasPlayer(id string) bool {
	return s.PlayerIndex(id) >= 0
}

// CurrentPlayer returns the acting player. ok is false outside the active
// phase or when the player list is empty.
func (s *Session) CurrentPlayer() (Player, bool) {
	if s.Phase != PhaseActive || len(s.Players) == 0 {
		return Player{}, false
	}
	return s.Players[s.CurrentTurn], true
}

// AdvanceTurn moves the turn to the next live player in round-robin order.
func (s *Session) AdvanceTurn() {
	if len(s.Players) == 0 {
		s.CurrentTurn = 0
		return
	}
	s.CurrentTurn = (s.CurrentTurn + 1) % len(s.Players)
}

// RemoveCurrentPlayer removes the acting player and returns them. The player
// list is replaced wholesale and CurrentTurn is reclamped modulo the shrunk
// list, so the turn lands on the player that shifted into the freed slot.
func (s *Session) RemoveCurrentPlayer() Player {
	removed := s.Players[s.CurrentTurn]
	next := make([]Player, 0, len(s.Players)-1)
	next = append(next, s.Players[:s.CurrentTurn]...)
	next = append(next, s.Players[s.CurrentTurn+1:]...)
	s.Players = next
	if len(next) > 0 {
		s.CurrentTurn %= len(next)
	} else {
		s.CurrentTurn = 0
	}
	return removed
}
