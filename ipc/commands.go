package ipc

// Outbound command types carried inside a decision. The provider owns the
// game connection; the agent only says what to send.
const (
	TypeSendMessage     = "send_message"
	TypeRegisterSupport = "register_support"
)

// SendMessageCommand asks the provider to deliver Body to one player.
type SendMessageCommand struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func NewSendMessage(to, body string) SendMessageCommand {
	return SendMessageCommand{Type: TypeSendMessage, To: to, Body: body}
}

// RegisterSupportCommand asks the provider to register our support for Target.
type RegisterSupportCommand struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

func NewRegisterSupport(target string) *RegisterSupportCommand {
	return &RegisterSupportCommand{Type: TypeRegisterSupport, Target: target}
}
