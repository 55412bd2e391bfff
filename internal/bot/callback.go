package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/pending"
)

// Button payloads carry the selection token so a press resolves exactly the
// capture it was shown for:
//
//	c|<token>|<category id>   pick a category
//	x|<token>                 cancel
//
// The older "category_<id>" and "cancel" payloads resolve the owner's oldest
// pending capture.
const (
	selectPrefix         = "c"
	cancelPrefix         = "x"
	dataSeparator        = "|"
	legacyCategoryPrefix = "category_"
	legacyCancel         = "cancel"
)

func SelectData(token, categoryID string) string {
	return selectPrefix + dataSeparator + token + dataSeparator + categoryID
}

func CancelData(token string) string {
	return cancelPrefix + dataSeparator + token
}

func ParseCallbackData(ownerID, data string) (pending.Choice, bool) {
	if data == legacyCancel {
		return pending.Choice{Cancel: true}, true
	}
	if id, ok := strings.CutPrefix(data, legacyCategoryPrefix); ok {
		if id == "" {
			return pending.Choice{}, false
		}
		return pending.Choice{CategoryID: id}, true
	}

	parts := strings.Split(data, dataSeparator)
	switch {
	case len(parts) == 3 && parts[0] == selectPrefix && parts[1] != "" && parts[2] != "":
		return pending.Choice{
			CorrelationID: pending.CorrelationID(ownerID, parts[1]),
			CategoryID:    parts[2],
		}, true
	case len(parts) == 2 && parts[0] == cancelPrefix && parts[1] != "":
		return pending.Choice{
			CorrelationID: pending.CorrelationID(ownerID, parts[1]),
			Cancel:        true,
		}, true
	}

	return pending.Choice{}, false
}

// CategoryKeyboard lays out one button per category and a trailing cancel
// button.
func CategoryKeyboard(token string, categories []database.Category) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories)+1)
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, SelectData(token, c.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(cancelButtonText, CancelData(token)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
