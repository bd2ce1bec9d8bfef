package engine

import (
	"fmt"
	"time"

	"partyhub/internal/domain"
	"partyhub/internal/rules"
)

// startTurn prompts the acting player and arms the turn timeout. Automated
// opponents get a think-delay timer instead; they never time out because
// they always act when it fires.
func (e *Engine) startTurn(s *domain.Session, module rules.Module) {
	acting := s.Players[s.CurrentTurn]
	if acting.IsBot {
		e.armTimer(s, e.botDelay(), e.onBotTurn)
		return
	}

	budget := e.cfg.TurnTimeout(s.Kind, s.Difficulty)
	e.notify(Event{
		Kind:           EventTurnPrompt,
		ConversationID: s.ConversationID,
		Payload: TurnPromptPayload{
			Player:  acting.DisplayName,
			Prompt:  module.Prompt(s.RuleState),
			Seconds: int(budget / time.Second),
		},
	})
	e.armTimer(s, budget, e.onTurnTimeout)
}

func (e *Engine) handleInput(conversationID, playerID, text string) error {
	s, ok := e.sessions.Get(conversationID)
	if !ok {
		return domain.ErrNoSession
	}
	if s.Phase != domain.PhaseActive {
		return nil
	}
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		// Unrelated chatter from non-participants never disturbs the game.
		return nil
	}
	if idx != s.CurrentTurn {
		e.logger.Debug("input from %s in %s ignored: %v", playerID, conversationID, domain.ErrNotYourTurn)
		return nil
	}
	module, _ := rules.ForKind(s.Kind)
	return e.applyMove(s, module, s.Players[idx], text)
}

// applyMove runs one validated move. On acceptance the outstanding timer is
// invalidated before the turn advances, so a timeout in flight for the old
// turn can never act on the new one.
func (e *Engine) applyMove(s *domain.Session, module rules.Module, actor domain.Player, text string) error {
	res := module.Validate(s.RuleState, actor, text)
	switch res.Verdict {
	case rules.Rejected:
		// The timer keeps running; the same player must retry.
		e.notify(Event{
			Kind:           EventMoveRejected,
			ConversationID: s.ConversationID,
			Payload:        MoveRejectedPayload{Player: actor.DisplayName, Reason: res.Reason},
		})
		return domain.ErrInvalidMove
	case rules.Accepted:
		e.cancelTimer(s)
		if res.State != nil {
			s.RuleState = res.State
		}
		s.AdvanceTurn()
		e.startTurn(s, module)
		return nil
	case rules.Terminal:
		e.cancelTimer(s)
		if res.State != nil {
			s.RuleState = res.State
		}
		e.finishGame(s, res.Winner)
		return nil
	}
	return nil
}

// onTurnTimeout eliminates the acting player when their budget expires. The
// sequence token guards the race between a move and a timeout both in
// flight: whichever the event queue dequeues first wins, the other is stale.
func (e *Engine) onTurnTimeout(conversationID string, seq uint64) {
	s, ok := e.sessions.Get(conversationID)
	if !ok || s.TimerSeq != seq || s.Phase != domain.PhaseActive {
		return // stale firing
	}
	delete(e.timers, conversationID)
	e.eliminateCurrent(s, "ran out of time")
}

// onBotTurn makes the automated opponent act after its think delay.
func (e *Engine) onBotTurn(conversationID string, seq uint64) {
	s, ok := e.sessions.Get(conversationID)
	if !ok || s.TimerSeq != seq || s.Phase != domain.PhaseActive {
		return // stale firing
	}
	delete(e.timers, conversationID)

	acting := s.Players[s.CurrentTurn]
	if !acting.IsBot {
		return
	}
	module, _ := rules.ForKind(s.Kind)
	agent := e.agents[conversationID]
	if agent == nil {
		e.eliminateCurrent(s, "forfeited")
		return
	}
	input, err := agent.Move(s)
	if err != nil {
		e.eliminateCurrent(s, "forfeited")
		return
	}
	if err := e.applyMove(s, module, acting, input); err != nil {
		// An opponent that produced an illegal move forfeits its seat.
		e.eliminateCurrent(s, "forfeited")
	}
}

// eliminateCurrent removes the acting player and continues or ends the
// session depending on how many players remain.
func (e *Engine) eliminateCurrent(s *domain.Session, reason string) {
	removed := s.RemoveCurrentPlayer()
	e.notify(Event{
		Kind:           EventPlayerEliminated,
		ConversationID: s.ConversationID,
		Payload:        PlayerEliminatedPayload{Player: removed.DisplayName, Reason: reason, Remaining: len(s.Players)},
	})

	switch len(s.Players) {
	case 0:
		// Should not happen with the two-player minimum, but a session must
		// still terminate cleanly without a winner.
		e.finishGame(s, nil)
	case 1:
		winner := s.Players[0]
		e.finishGame(s, &winner)
	default:
		module, _ := rules.ForKind(s.Kind)
		e.startTurn(s, module)
	}
}

// finishGame records the outcome and tears the session down in one step.
func (e *Engine) finishGame(s *domain.Session, winner *domain.Player) {
	s.Phase = domain.PhaseFinished
	if winner != nil {
		total := e.board.RecordWin(winner.ID, winner.DisplayName)
		e.notify(Event{
			Kind:           EventGameWon,
			ConversationID: s.ConversationID,
			Payload:        GameWonPayload{Winner: winner.DisplayName, TotalWins: total, Detail: terminalDetail(s)},
		})
	} else {
		e.notify(Event{
			Kind:           EventGameDrawn,
			ConversationID: s.ConversationID,
			Payload:        GameDrawnPayload{Detail: terminalDetail(s)},
		})
	}
	e.endSession(s)
}

func terminalDetail(s *domain.Session) string {
	if s.Kind == domain.KindHangman {
		if w := rules.Word(s.RuleState); w != "" {
			return fmt.Sprintf("The word was %q.", w)
		}
	}
	return ""
}
