package models

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Rendering tells how a message's content is interpreted
type Rendering string

const (
	RenderingPlain     Rendering = "plain"
	RenderingFormatted Rendering = "formatted"
)

// Message is a read-only snapshot of one message element in the conversation view
type Message struct {
	Role      Role
	Content   string // text content of the element
	HTML      string // inner markup, meaningful when Rendering is formatted
	Rendering Rendering
	Busy      bool // placeholder still waiting for the first chunk
}

// IsFormatted reports whether the message carries interpreted markup
func (m Message) IsFormatted() bool {
	return m.Rendering == RenderingFormatted
}
