// Package telegram is the destination boundary: one post operation against a
// configured chat, with message formatting selected at construction.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ErrForbidden means the bot may not post to the configured chat (revoked
// token, kicked from the chat). Needs operator intervention.
var ErrForbidden = errors.New("telegram: forbidden")

// NetworkError wraps a transport-level send failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("telegram: send: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// Message is one outbound chat message: text plus an optional rich-content
// attachment.
type Message struct {
	Text           string
	ParseMode      string // "" for plain text, tele.ModeHTML for rich
	DisablePreview bool
	PhotoURL       string // optional; sent as a photo with Text as caption
}

// Poster posts one message to the destination chat.
type Poster interface {
	PostMessage(ctx context.Context, msg Message) error
}

// Config holds the destination chat settings.
type Config struct {
	Token    string
	ChatID   int64
	ThreadID int
}

// Client posts messages to a single Telegram chat.
type Client struct {
	bot      *tele.Bot
	chatID   int64
	threadID int
}

// New creates the destination client. The token is verified against the API
// during construction.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram: token is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	return &Client{bot: b, chatID: cfg.ChatID, threadID: cfg.ThreadID}, nil
}

// PostMessage sends one message to the configured chat.
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	// The bot API client is not context-aware; honor cancellation at least
	// at the send boundary.
	if err := ctx.Err(); err != nil {
		return &NetworkError{Err: err}
	}
	opts := &tele.SendOptions{
		ParseMode:             msg.ParseMode,
		DisableWebPagePreview: msg.DisablePreview,
		ThreadID:              c.threadID,
	}
	var what any = msg.Text
	if msg.PhotoURL != "" {
		what = &tele.Photo{File: tele.FromURL(msg.PhotoURL), Caption: msg.Text}
	}
	if _, err := c.bot.Send(tele.ChatID(c.chatID), what, opts); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var te *tele.Error
	if errors.As(err, &te) && (te.Code == 401 || te.Code == 403) {
		return fmt.Errorf("%w: %s", ErrForbidden, te.Description)
	}
	return &NetworkError{Err: err}
}
