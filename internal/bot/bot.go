package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/metadata"
	"github.com/lysyi3m/pitki/internal/metrics"
	"github.com/lysyi3m/pitki/internal/pending"
	"github.com/lysyi3m/pitki/internal/tasks"
)

type CategoryStore interface {
	ListCategories(ctx context.Context, ownerID string) ([]database.Category, error)
	CreateCategory(ctx context.Context, ownerID, name string) (*database.Category, error)
	SeedCategories(ctx context.Context, ownerID string, names []string) (int, error)
}

type Coordinator interface {
	Register(ctx context.Context, candidate pending.Candidate) (*pending.Selection, error)
	Resolve(ctx context.Context, ownerID string, choice pending.Choice) pending.Outcome
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) metadata.Metadata
}

type Options struct {
	DefaultCategories []string
	FallbackCategory  string
	Timeout           time.Duration
}

type Bot struct {
	sender      Sender
	categories  CategoryStore
	coordinator Coordinator
	fetcher     MetadataFetcher
	scheduler   tasks.TaskSchedulerInterface
	opts        Options
}

func New(sender Sender, categories CategoryStore, coordinator Coordinator, fetcher MetadataFetcher, scheduler tasks.TaskSchedulerInterface, opts Options) *Bot {
	if opts.Timeout <= 0 {
		opts.Timeout = pending.DefaultTimeout
	}
	if opts.FallbackCategory == "" {
		opts.FallbackCategory = pending.DefaultFallbackName
	}

	return &Bot{
		sender:      sender,
		categories:  categories,
		coordinator: coordinator,
		fetcher:     fetcher,
		scheduler:   scheduler,
		opts:        opts,
	}
}

// Run hands every update to the task queue until ctx is done or the channel
// is closed.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	slog.Info("Telegram bot started")
	defer slog.Info("Telegram bot stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	taskType, ownerID, ok := classify(update)
	if !ok {
		return
	}
	metrics.BotUpdatesTotal.WithLabelValues(string(taskType)).Inc()

	task := NewUpdateTask(b, update, taskType, ownerID, retriesFor(update, taskType))
	if err := b.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue update", "type", taskType, "owner_id", ownerID, "error", err)
		if errors.Is(err, tasks.ErrQueueFull) && update.Message != nil {
			if replyErr := b.reply(update.Message.Chat.ID, busyText); replyErr != nil {
				slog.Warn("Failed to send busy reply", "owner_id", ownerID, "error", replyErr)
			}
		}
	}
}

// Dispatch processes a single update synchronously.
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil || update.Message.Chat == nil:
		return nil
	case update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	default:
		return b.handleCapture(ctx, update.Message)
	}
}

func classify(update tgbotapi.Update) (tasks.TaskType, string, bool) {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil {
			return "", "", false
		}
		return tasks.TaskTypeSelection, ownerID(q.From), true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return "", "", false
	}
	if msg.IsCommand() {
		return tasks.TaskTypeCommand, ownerID(msg.From), true
	}
	if messageText(msg) == "" {
		return "", "", false
	}
	return tasks.TaskTypeCapture, ownerID(msg.From), true
}

// Only idempotent commands are retried. A repeated capture would prompt twice
// and a repeated selection always resolves to nothing.
func retriesFor(update tgbotapi.Update, taskType tasks.TaskType) int {
	if taskType != tasks.TaskTypeCommand {
		return 0
	}
	if update.Message.Command() == "addcategory" {
		return 0
	}
	return tasks.DefaultMaxRetries
}

func ownerID(user *tgbotapi.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func (b *Bot) reply(chatID int64, text string) error {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) answer(callbackID, text string) error {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}
