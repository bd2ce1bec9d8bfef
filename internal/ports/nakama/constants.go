package nakama

const (
	// RPC ids the chat client calls to drive a conversation's session.
	RpcGameStart       = "game_start"
	RpcGameJoin        = "game_join"
	RpcGameInput       = "game_input"
	RpcGameReset       = "game_reset"
	RpcGameLeaderboard = "game_leaderboard"

	// LeaderboardLimit caps the ranked view returned to clients.
	LeaderboardLimit = 10

	// hostUsername is the sender name on outbound channel messages.
	hostUsername = "partyhub"
)
