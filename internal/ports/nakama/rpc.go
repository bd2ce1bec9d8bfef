package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"partyhub/internal/domain"
	"partyhub/internal/engine"
	"partyhub/internal/ports"
)

// handlers holds the RPC dependencies.
type handlers struct {
	engine *engine.Engine
	gate   ports.AccessGate
}

type startRequest struct {
	ConversationID string `json:"conversation_id"`
	Kind           string `json:"kind"`
	Difficulty     string `json:"difficulty"`
	Solo           bool   `json:"solo"`
}

type joinRequest struct {
	ConversationID string `json:"conversation_id"`
}

type inputRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type resetRequest struct {
	ConversationID string `json:"conversation_id"`
}

// ackResponse reports game-level acceptance back to the chat client. A
// refused command is not a transport error; Message carries the user-facing
// explanation.
type ackResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type leaderboardEntry struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
}

type leaderboardResponse struct {
	Entries []leaderboardEntry `json:"entries"`
}

// RegisterRPCs registers the chat-facing endpoints.
func RegisterRPCs(initializer runtime.Initializer, h *handlers) error {
	for id, fn := range map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcGameStart:       h.rpcGameStart,
		RpcGameJoin:        h.rpcGameJoin,
		RpcGameInput:       h.rpcGameInput,
		RpcGameReset:       h.rpcGameReset,
		RpcGameLeaderboard: h.rpcGameLeaderboard,
	} {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// callerFromContext resolves the acting player from the runtime context.
func callerFromContext(ctx context.Context) (domain.Player, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return domain.Player{}, fmt.Errorf("rpc requires an authenticated user")
	}
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if username == "" {
		username = userID
	}
	return domain.Player{ID: userID, DisplayName: username}, nil
}

func (h *handlers) rpcGameStart(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return "", err
	}
	var req startRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid start payload: %w", err)
	}
	if req.ConversationID == "" {
		return "", fmt.Errorf("conversation_id is required")
	}

	kind := domain.GameKind(req.Kind)
	if !h.gate.CanStart(ctx, caller.ID, kind) {
		logger.Info("start of %s in %s refused for %s by access gate", req.Kind, req.ConversationID, caller.ID)
		return ack(false, "this game is for premium players")
	}

	err = h.engine.StartSession(ctx, req.ConversationID, kind, domain.Difficulty(req.Difficulty), caller, req.Solo)
	switch {
	case err == nil:
		return ack(true, "")
	case errors.Is(err, domain.ErrAlreadyRunning),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, engine.ErrSoloUnavailable):
		return ack(false, err.Error())
	default:
		logger.Error("game_start failed in %s: %v", req.ConversationID, err)
		return "", err
	}
}

func (h *handlers) rpcGameJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return "", err
	}
	var req joinRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid join payload: %w", err)
	}

	err = h.engine.Join(ctx, req.ConversationID, caller)
	switch {
	case err == nil:
		return ack(true, "")
	case errors.Is(err, domain.ErrNoSession):
		return ack(false, err.Error())
	default:
		logger.Error("game_join failed in %s: %v", req.ConversationID, err)
		return "", err
	}
}

func (h *handlers) rpcGameInput(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return "", err
	}
	var req inputRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid input payload: %w", err)
	}

	err = h.engine.HandleInput(ctx, req.ConversationID, caller.ID, req.Text)
	switch {
	case err == nil:
		return ack(true, "")
	case errors.Is(err, domain.ErrInvalidMove), errors.Is(err, domain.ErrNoSession):
		return ack(false, err.Error())
	default:
		logger.Error("game_input failed in %s: %v", req.ConversationID, err)
		return "", err
	}
}

func (h *handlers) rpcGameReset(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return "", err
	}
	var req resetRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("invalid reset payload: %w", err)
	}

	err = h.engine.Reset(ctx, req.ConversationID, caller.ID)
	switch {
	case err == nil:
		return ack(true, "")
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrUnauthorized):
		return ack(false, err.Error())
	default:
		logger.Error("game_reset failed in %s: %v", req.ConversationID, err)
		return "", err
	}
}

func (h *handlers) rpcGameLeaderboard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	top := h.engine.Leaderboard(LeaderboardLimit)
	resp := leaderboardResponse{Entries: make([]leaderboardEntry, 0, len(top))}
	for _, e := range top {
		resp.Entries = append(resp.Entries, leaderboardEntry{DisplayName: e.DisplayName, Wins: e.Wins})
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ack(ok bool, message string) (string, error) {
	b, err := json.Marshal(ackResponse{Ok: ok, Message: message})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
