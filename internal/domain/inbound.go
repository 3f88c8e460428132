package domain

import "strings"

// InboundKind is the closed set of inbound message variants
type InboundKind int

const (
	InboundUnhandled InboundKind = iota
	InboundCommand
	InboundAnswer
)

func (k InboundKind) String() string {
	switch k {
	case InboundCommand:
		return "command"
	case InboundAnswer:
		return "answer"
	default:
		return "unhandled"
	}
}

// Inbound is a classified chat message
type Inbound struct {
	Kind    InboundKind
	Command string // "/game", without any @botname suffix
	Args    string
	Text    string // submitted answer, verbatim
}

// ClassifyMessage splits text into a command or an answer submission.
// Empty text (stickers, photos, service messages) is unhandled.
func ClassifyMessage(text string) Inbound {
	if strings.TrimSpace(text) == "" {
		return Inbound{Kind: InboundUnhandled}
	}

	if !strings.HasPrefix(text, "/") {
		return Inbound{Kind: InboundAnswer, Text: text}
	}

	fields := strings.Fields(text)
	command := fields[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	return Inbound{
		Kind:    InboundCommand,
		Command: command,
		Args:    strings.Join(fields[1:], " "),
	}
}
