// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// BotIdentity is what the Bot API reports about the authenticated bot.
type BotIdentity struct {
	ID        int64
	Username  string
	FirstName string
}

type TelegramBotAdapter interface {
	// SendMessage delivers text to chat, a numeric chat id or an "@channel" username.
	SendMessage(ctx context.Context, chat string, text string) error
	// GetMe checks the bot credential against the Bot API.
	GetMe(ctx context.Context) (BotIdentity, error)
}
