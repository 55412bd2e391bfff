package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/pending"
	"github.com/lysyi3m/pitki/internal/source"
)

func (b *Bot) handleCapture(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(messageText(msg))
	if text == "" {
		return nil
	}
	chatID := msg.Chat.ID

	if _, err := b.sender.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.Debug("Failed to send chat action", "chat_id", chatID, "error", err)
	}

	candidate := b.buildCandidate(ctx, ownerID(msg.From), chatID, text)

	sel, err := b.coordinator.Register(ctx, candidate)
	switch {
	case errors.Is(err, pending.ErrNoCategories):
		return b.reply(chatID, noCategoriesText)
	case err != nil:
		if replyErr := b.reply(chatID, captureFailedText); replyErr != nil {
			slog.Warn("Failed to report capture failure", "owner_id", candidate.OwnerID, "error", replyErr)
		}
		return fmt.Errorf("failed to register capture: %w", err)
	}

	slog.Info("Capture awaiting category",
		"owner_id", candidate.OwnerID,
		"correlation_id", sel.CorrelationID,
		"source", candidate.Source,
		"has_url", candidate.URL != "")
	return nil
}

// buildCandidate turns a message into a capture. Links get their page title
// and thumbnail; plain text keeps its first characters as the title.
func (b *Bot) buildCandidate(ctx context.Context, owner string, chatID int64, text string) pending.Candidate {
	candidate := pending.Candidate{
		OwnerID: owner,
		ChatID:  chatID,
		RawText: text,
	}

	link, ok := source.ExtractURL(text)
	if !ok {
		candidate.Title = source.TextTitle(text)
		candidate.Source = source.TextCapture
		return candidate
	}

	meta := b.fetcher.Fetch(ctx, link)
	candidate.URL = link
	candidate.Title = meta.Title
	candidate.Thumbnail = meta.Thumbnail
	candidate.Source = source.DetectSource(link)
	return candidate
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return nil
	}
	owner := ownerID(query.From)

	choice, ok := ParseCallbackData(owner, query.Data)
	if !ok {
		slog.Warn("Unknown callback data", "owner_id", owner, "data", query.Data)
		return b.answer(query.ID, unknownActionAnswer)
	}
	if query.Message != nil && query.Message.Chat != nil {
		choice.ChatID = query.Message.Chat.ID
		choice.MessageID = query.Message.MessageID
	}

	outcome := b.coordinator.Resolve(ctx, owner, choice)
	return b.answer(query.ID, callbackAnswer(outcome))
}
