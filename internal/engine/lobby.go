package engine

import (
	"time"

	"partyhub/internal/bot"
	"partyhub/internal/domain"
	"partyhub/internal/rules"
)

func (e *Engine) startSession(conversationID string, kind domain.GameKind, difficulty domain.Difficulty, starter domain.Player, solo bool) error {
	module, ok := rules.ForKind(kind)
	if !ok {
		return domain.ErrUnknownKind
	}
	if !difficulty.Valid() {
		difficulty = domain.DifficultyEasy
	}
	if _, exists := e.sessions.Get(conversationID); exists {
		return domain.ErrAlreadyRunning
	}

	s := &domain.Session{
		ConversationID: conversationID,
		Kind:           kind,
		Difficulty:     difficulty,
		Phase:          domain.PhaseLobby,
		Players:        []domain.Player{starter},
	}
	if err := e.sessions.Create(s); err != nil {
		return err
	}

	if solo {
		if !e.cfg.BotsEnabled {
			e.sessions.Remove(conversationID)
			return ErrSoloUnavailable
		}
		agent, err := bot.NewAgent(kind, e.rng)
		if err != nil {
			e.sessions.Remove(conversationID)
			return ErrSoloUnavailable
		}
		identity := bot.PickIdentity(e.rng)
		s.Players = append(s.Players, domain.Player{
			ID:          identity.UserID,
			DisplayName: identity.DisplayName,
			IsBot:       true,
		})
		e.agents[conversationID] = agent
		e.logger.Info("solo %s session started in %s vs %s", kind, conversationID, identity.DisplayName)
		e.beginGame(s, module)
		return nil
	}

	e.notify(Event{
		Kind:           EventLobbyOpened,
		ConversationID: conversationID,
		Payload: LobbyOpenedPayload{
			GameKind: kind,
			Starter:  starter.DisplayName,
			Seconds:  int(e.cfg.LobbyTimeout / time.Second),
		},
	})
	e.armTimer(s, e.cfg.LobbyTimeout, e.onLobbyExpiry)
	return nil
}

func (e *Engine) join(conversationID string, p domain.Player) error {
	s, ok := e.sessions.Get(conversationID)
	if !ok {
		return domain.ErrNoSession
	}
	// Joins after the lobby closed are treated like unrelated chatter.
	if s.Phase != domain.PhaseLobby {
		return nil
	}
	if s.HasPlayer(p.ID) {
		// Duplicate joins are idempotent, not lobby-aborting errors.
		e.logger.Debug("join from %s in %s ignored: %v", p.ID, conversationID, domain.ErrAlreadyJoined)
		return nil
	}
	module, _ := rules.ForKind(s.Kind)
	if _, max := module.Limits(); max > 0 && len(s.Players) >= max {
		e.logger.Debug("join from %s ignored, %s table in %s is full", p.ID, s.Kind, conversationID)
		return nil
	}

	players := make([]domain.Player, len(s.Players), len(s.Players)+1)
	copy(players, s.Players)
	s.Players = append(players, p)

	e.notify(Event{
		Kind:           EventPlayerJoined,
		ConversationID: conversationID,
		Payload:        PlayerJoinedPayload{Player: p.DisplayName, Count: len(s.Players)},
	})
	return nil
}

// onLobbyExpiry promotes a quorate lobby to active play, or cancels it.
func (e *Engine) onLobbyExpiry(conversationID string, seq uint64) {
	s, ok := e.sessions.Get(conversationID)
	if !ok || s.TimerSeq != seq || s.Phase != domain.PhaseLobby {
		return // stale firing
	}
	delete(e.timers, conversationID)

	module, _ := rules.ForKind(s.Kind)
	quorum, _ := module.Limits()
	if quorum < e.cfg.MinPlayers {
		quorum = e.cfg.MinPlayers
	}
	if len(s.Players) < quorum {
		e.logger.Info("lobby in %s cancelled with %d/%d players: %v", conversationID, len(s.Players), quorum, domain.ErrInsufficientPlayers)
		e.notify(Event{
			Kind:           EventLobbyCancelled,
			ConversationID: conversationID,
			Payload:        LobbyCancelledPayload{Joined: len(s.Players), Needed: quorum},
		})
		s.Phase = domain.PhaseFinished
		e.endSession(s)
		return
	}
	e.beginGame(s, module)
}

func (e *Engine) beginGame(s *domain.Session, module rules.Module) {
	s.Phase = domain.PhaseActive
	s.CurrentTurn = 0
	s.RuleState = module.New(rules.Config{
		Difficulty: s.Difficulty,
		Players:    s.Players,
		Rng:        e.rng,
	})

	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = p.DisplayName
	}
	e.notify(Event{
		Kind:           EventGameStarted,
		ConversationID: s.ConversationID,
		Payload:        GameStartedPayload{GameKind: s.Kind, Players: names},
	})
	e.startTurn(s, module)
}

func (e *Engine) reset(conversationID, playerID string) error {
	s, ok := e.sessions.Get(conversationID)
	if !ok {
		return domain.ErrNoSession
	}
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return domain.ErrUnauthorized
	}

	s.Phase = domain.PhaseFinished
	e.notify(Event{
		Kind:           EventSessionReset,
		ConversationID: conversationID,
		Payload:        SessionResetPayload{By: s.Players[idx].DisplayName},
	})
	e.endSession(s)
	return nil
}
