package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/database"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	owner := ownerID(msg.From)
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, owner, chatID)
	case "addcategory":
		return b.handleAddCategory(ctx, owner, chatID, msg.CommandArguments())
	case "categories":
		return b.handleCategories(ctx, owner, chatID)
	case "help":
		return b.reply(chatID, helpText(b.opts.Timeout, b.opts.FallbackCategory))
	default:
		return b.reply(chatID, unknownCommandText)
	}
}

func (b *Bot) handleStart(ctx context.Context, owner string, chatID int64) error {
	created, err := b.categories.SeedCategories(ctx, owner, b.opts.DefaultCategories)
	if err != nil {
		slog.Error("Failed to seed categories", "owner_id", owner, "error", err)
		return b.reply(chatID, welcomeBackText)
	}

	slog.Info("Owner started", "owner_id", owner, "categories_created", created)
	return b.reply(chatID, welcomeText(b.opts.Timeout, b.opts.FallbackCategory))
}

func (b *Bot) handleAddCategory(ctx context.Context, owner string, chatID int64, args string) error {
	name := database.NormalizeCategoryName(args)
	if name == "" {
		return b.reply(chatID, addCategoryUsage)
	}

	category, err := b.categories.CreateCategory(ctx, owner, name)
	switch {
	case errors.Is(err, database.ErrConflict):
		return b.reply(chatID, fmt.Sprintf("❌ Error: Category \"%s\" already exists.", name))
	case err != nil:
		slog.Error("Failed to create category", "owner_id", owner, "name", name, "error", err)
		return b.reply(chatID, fmt.Sprintf("❌ Error: could not add category \"%s\".", name))
	}

	slog.Info("Category added", "owner_id", owner, "category_id", category.ID, "name", category.Name)
	return b.reply(chatID, fmt.Sprintf("✅ Category \"%s\" added!", category.Name))
}

func (b *Bot) handleCategories(ctx context.Context, owner string, chatID int64) error {
	categories, err := b.categories.ListCategories(ctx, owner)
	if err != nil {
		slog.Error("Failed to list categories", "owner_id", owner, "error", err)
		return b.reply(chatID, categoriesErrorText)
	}
	if len(categories) == 0 {
		return b.reply(chatID, noCategoriesYetText)
	}

	return b.reply(chatID, categoryListText(categories))
}
