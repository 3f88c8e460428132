package testutil

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Sent is one message passed to FakeContext.Send
type Sent struct {
	What any
	Opts []any
}

// FakeContext is a tele.Context for a single text message. Methods it does
// not override panic through the nil embedded interface.
type FakeContext struct {
	tele.Context

	ChatID  int64
	Input   string
	SendErr error

	mu     sync.Mutex
	sent   []Sent
	values map[string]any
}

// NewFakeContext creates a context for text sent to chatID
func NewFakeContext(chatID int64, text string) *FakeContext {
	return &FakeContext{ChatID: chatID, Input: text}
}

func (c *FakeContext) Chat() *tele.Chat {
	return &tele.Chat{ID: c.ChatID, Type: tele.ChatPrivate}
}

func (c *FakeContext) Sender() *tele.User {
	return &tele.User{ID: c.ChatID, Username: "tester"}
}

func (c *FakeContext) Text() string {
	return c.Input
}

func (c *FakeContext) Send(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return c.SendErr
}

func (c *FakeContext) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

func (c *FakeContext) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = val
}

// Sent returns every message sent so far
func (c *FakeContext) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// LastText returns the last message sent as plain text, or "" if there is none
func (c *FakeContext) LastText() string {
	sent := c.Sent()
	if len(sent) == 0 {
		return ""
	}
	text, _ := sent[len(sent)-1].What.(string)
	return text
}
