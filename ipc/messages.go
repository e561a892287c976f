package ipc

// Message types exchanged with the game-state provider.
const (
	TypeHello      = "hello"
	TypeAck        = "ack"
	TypeGameStatus = "game_status"
	TypeDecision   = "decision"
)

// HelloMessage registers the display name the agent plays under.
type HelloMessage struct {
	PlayerName string `json:"player_name"`
}

// AckMessage answers a hello. Broadcast is the signed identity claim the
// provider should send to every other player.
type AckMessage struct {
	Status    string `json:"status"`
	Broadcast string `json:"broadcast,omitempty"`
}
