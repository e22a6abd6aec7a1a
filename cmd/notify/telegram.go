package notify

import (
	"context"
	"fmt"

	"github.com/eolymp/autosubmit/cmd/informatics"
	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is implemented by *tg.BotAPI
type Sender interface {
	Send(c tg.Chattable) (tg.Message, error)
}

// Telegram posts a message to the chat once the judge confirms a submission
type Telegram struct {
	informatics.NopObserver

	bot    Sender
	chatID int64
	log    *zap.Logger
}

func NewTelegram(bot Sender, chatID int64, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}

	return &Telegram{bot: bot, chatID: chatID, log: log}
}

// Connect to the bot api with the given token
func Connect(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	bot, err := tg.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to connect telegram bot: %w", err)
	}

	if log != nil {
		log.Debug("Telegram bot started", zap.String("bot", bot.Self.UserName))
	}

	return NewTelegram(bot, chatID, log), nil
}

func (t *Telegram) Submitted(ctx context.Context, receipt *informatics.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := t.bot.Send(submittedMsg(t.chatID, receipt))
	if err != nil {
		return fmt.Errorf("unable to send telegram message: %w", err)
	}

	t.log.Debug("Telegram message sent", zap.Int("message_id", msg.MessageID), zap.Int64("chat_id", t.chatID))

	return nil
}

func submittedMsg(chatID int64, receipt *informatics.Receipt) tg.MessageConfig {
	text := fmt.Sprintf("Submitted, run_id: %s\nproblem: %s", receipt.Submission, receipt.ProblemID)
	if receipt.Problem != receipt.ProblemID {
		text += fmt.Sprintf(" (statement %s)", receipt.Problem)
	}

	msg := tg.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return msg
}
