package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-common/runtime"

	"partyhub/internal/domain"
	"partyhub/internal/engine"
)

// ChannelMessenger is the slice of runtime.NakamaModule the notifier needs.
type ChannelMessenger interface {
	ChannelMessageSend(ctx context.Context, channelID string, content map[string]interface{}, senderID, senderUsername string, persist bool) (*rtapi.ChannelMessageAck, error)
}

// ChannelNotifier formats engine events as chat text and sends them to the
// session's conversation channel.
type ChannelNotifier struct {
	nk     ChannelMessenger
	logger runtime.Logger
}

// NewChannelNotifier builds a notifier on top of the Nakama channel API.
func NewChannelNotifier(nk ChannelMessenger, logger runtime.Logger) *ChannelNotifier {
	return &ChannelNotifier{nk: nk, logger: logger}
}

// Notify sends one event as a channel message. Unknown events are dropped.
func (n *ChannelNotifier) Notify(ctx context.Context, ev engine.Event) error {
	text := formatEvent(ev)
	if text == "" {
		n.logger.Warn("no formatter for event kind %s", ev.Kind)
		return nil
	}
	content := map[string]interface{}{"text": text}
	_, err := n.nk.ChannelMessageSend(ctx, ev.ConversationID, content, "", hostUsername, true)
	if err != nil {
		return fmt.Errorf("failed to send channel message: %w", err)
	}
	return nil
}

var kindTitles = map[domain.GameKind]string{
	domain.KindWordChain: "Word Chain",
	domain.KindTicTacToe: "Tic Tac Toe",
	domain.KindHangman:   "Hangman",
	domain.KindTrivia:    "Trivia",
}

func kindTitle(k domain.GameKind) string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return string(k)
}

func formatEvent(ev engine.Event) string {
	switch p := ev.Payload.(type) {
	case engine.LobbyOpenedPayload:
		return fmt.Sprintf("🎮 %s opened a %s lobby! Join within %d seconds.", p.Starter, kindTitle(p.GameKind), p.Seconds)
	case engine.PlayerJoinedPayload:
		return fmt.Sprintf("➕ %s joined. %d players in.", p.Player, p.Count)
	case engine.LobbyCancelledPayload:
		return fmt.Sprintf("🚫 Only %d of %d needed players joined. Game cancelled.", p.Joined, p.Needed)
	case engine.GameStartedPayload:
		return fmt.Sprintf("▶️ %s starts: %s", kindTitle(p.GameKind), joinNames(p.Players))
	case engine.TurnPromptPayload:
		return fmt.Sprintf("%s, you have %d seconds.\n%s", p.Player, p.Seconds, p.Prompt)
	case engine.MoveRejectedPayload:
		return fmt.Sprintf("❌ %s: %s", p.Player, p.Reason)
	case engine.PlayerEliminatedPayload:
		return fmt.Sprintf("💀 %s %s and is out. %d remaining.", p.Player, p.Reason, p.Remaining)
	case engine.GameWonPayload:
		text := fmt.Sprintf("🏆 %s wins! Total wins: %d.", p.Winner, p.TotalWins)
		if p.Detail != "" {
			text += " " + p.Detail
		}
		return text
	case engine.GameDrawnPayload:
		text := "🤝 It's a draw."
		if p.Detail != "" {
			text += " " + p.Detail
		}
		return text
	case engine.SessionResetPayload:
		return fmt.Sprintf("🛑 Game stopped by %s.", p.By)
	}
	return ""
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
