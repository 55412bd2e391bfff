package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/pending"
)

// Sender is the subset of the Telegram client the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ pending.Notifier = (*Notifier)(nil)

// Notifier renders coordinator prompts and outcomes as Telegram messages.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) Prompt(_ context.Context, sel pending.Selection, categories []database.Category) error {
	msg := tgbotapi.NewMessage(sel.ChatID, promptText(sel))
	msg.ReplyMarkup = CategoryKeyboard(sel.Token(), categories)

	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}
	return nil
}

// Notify replaces the prompt message when the outcome came from a button
// press, and sends a new message otherwise.
func (n *Notifier) Notify(_ context.Context, outcome pending.Outcome) error {
	text := OutcomeText(outcome)
	if text == "" {
		return nil
	}
	if outcome.ChatID == 0 {
		return fmt.Errorf("no chat to notify for owner %s", outcome.OwnerID)
	}

	if outcome.MessageID != 0 {
		edit := tgbotapi.NewEditMessageText(outcome.ChatID, outcome.MessageID, text)
		if _, err := n.sender.Request(edit); err != nil {
			return fmt.Errorf("failed to edit prompt: %w", err)
		}
		return nil
	}

	if _, err := n.sender.Send(tgbotapi.NewMessage(outcome.ChatID, text)); err != nil {
		return fmt.Errorf("failed to send outcome: %w", err)
	}
	return nil
}
