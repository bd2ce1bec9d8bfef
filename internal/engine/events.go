package engine

import "partyhub/internal/domain"

// EventKind identifies emitted session events for transport dispatch.
type EventKind string

const (
	EventLobbyOpened      EventKind = "lobby_opened"
	EventPlayerJoined     EventKind = "player_joined"
	EventLobbyCancelled   EventKind = "lobby_cancelled"
	EventGameStarted      EventKind = "game_started"
	EventTurnPrompt       EventKind = "turn_prompt"
	EventMoveRejected     EventKind = "move_rejected"
	EventPlayerEliminated EventKind = "player_eliminated"
	EventGameWon          EventKind = "game_won"
	EventGameDrawn        EventKind = "game_drawn"
	EventSessionReset     EventKind = "session_reset"
)

// Event is a session transition notification. Text formatting is left to the
// transport adapter.
type Event struct {
	Kind           EventKind
	ConversationID string
	Payload        any
}

type LobbyOpenedPayload struct {
	GameKind domain.GameKind
	Starter  string
	Seconds  int
}

type PlayerJoinedPayload struct {
	Player string
	Count  int
}

type LobbyCancelledPayload struct {
	Joined int
	Needed int
}

type GameStartedPayload struct {
	GameKind domain.GameKind
	Players  []string
}

type TurnPromptPayload struct {
	Player  string
	Prompt  string
	Seconds int
}

type MoveRejectedPayload struct {
	Player string
	Reason string
}

type PlayerEliminatedPayload struct {
	Player    string
	Reason    string
	Remaining int
}

type GameWonPayload struct {
	Winner    string
	TotalWins int
	Detail    string
}

type GameDrawnPayload struct {
	Detail string
}

type SessionResetPayload struct {
	By string
}
