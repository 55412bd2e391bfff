package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/tasks"
)

type UpdateTask struct {
	tasks.Task
	bot    *Bot
	update tgbotapi.Update
}

func NewUpdateTask(bot *Bot, update tgbotapi.Update, taskType tasks.TaskType, ownerID string, maxRetries int) *UpdateTask {
	return &UpdateTask{
		Task:   tasks.NewTask(taskType, ownerID, maxRetries),
		bot:    bot,
		update: update,
	}
}

func (t *UpdateTask) Execute(ctx context.Context) error {
	return t.bot.Dispatch(ctx, t.update)
}
