package domain

import "errors"

// Session errors are recoverable and local to a single conversation. None of
// them may take down the hosting process.
var (
	// ErrAlreadyRunning rejects a start command while a session exists.
	ErrAlreadyRunning = errors.New("a game is already running in this conversation")
	// ErrAlreadyJoined marks a duplicate join; callers treat it as a no-op.
	ErrAlreadyJoined = errors.New("player already joined")
	// ErrNotYourTurn marks input from a non-acting player; silently ignored.
	ErrNotYourTurn = errors.New("not this player's turn")
	// ErrInvalidMove is a rule-module rejection; the turn timer keeps running.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInsufficientPlayers cancels a lobby that expired below quorum.
	ErrInsufficientPlayers = errors.New("not enough players to start")
	// ErrUnauthorized rejects a reset from a non-participant.
	ErrUnauthorized = errors.New("requesting player is not a participant")
	// ErrNoSession means no game is running in the conversation.
	ErrNoSession = errors.New("no game running in this conversation")
	// ErrUnknownKind rejects a start command naming no hosted game.
	ErrUnknownKind = errors.New("unknown game kind")
)
