package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/pending"
)

const (
	welcomeBackText     = "Welcome back to Pitki! Send me a link to get started."
	addCategoryUsage    = "Please provide a category name.\n\nUsage: /addcategory Finance"
	noCategoriesYetText = "You don't have any categories yet. Use /start to create default ones."
	categoriesErrorText = "❌ Error fetching categories."
	noCategoriesText    = "Please use /start first to create your categories."
	captureFailedText   = "❌ Something went wrong while saving your link. Please send it again."
	cancelledText       = "Cancelled. Article not saved."
	expiredAnswer       = "Article already saved or expired."
	failedAnswer        = "Error saving article. Please try again."
	unknownActionAnswer = "Unknown action."
	cancelButtonText    = "❌ Cancel"
	unknownCommandText  = "Unknown command. Use /help to see what I can do."
	busyText            = "⏳ I'm a bit busy right now. Please try again in a moment."
)

func welcomeText(timeout time.Duration, fallback string) string {
	return "👋 Welcome to Pitki!\n\n" +
		"I help you collect and organize articles from around the web.\n\n" +
		"📌 Just send me a link, and I'll help you categorize it.\n" +
		fmt.Sprintf("⏱️ You have %d seconds to pick a category, or I'll save it to %q.\n\n", int(timeout.Seconds()), fallback) +
		"Commands:\n" +
		"/addcategory <name> - Add a new category\n" +
		"/categories - List all your categories\n" +
		"/help - Show this message"
}

func helpText(timeout time.Duration, fallback string) string {
	return "🤖 Pitki - Article Collection Bot\n\n" +
		"Send me any link, and I'll help you organize it!\n\n" +
		"Commands:\n" +
		"/start - Initialize your account\n" +
		"/addcategory <name> - Add a new category\n" +
		"/categories - List all your categories\n" +
		"/help - Show this message\n\n" +
		"Just send a URL or text, and I'll ask you to categorize it. " +
		fmt.Sprintf("You have %d seconds to choose, or it goes to %q.", int(timeout.Seconds()), fallback)
}

func categoryListText(categories []database.Category) string {
	lines := make([]string, len(categories))
	for i, c := range categories {
		lines[i] = "• " + c.Name
	}
	return "📁 Your categories:\n\n" + strings.Join(lines, "\n")
}

func promptText(sel pending.Selection) string {
	return fmt.Sprintf("Article: %s\nSource: %s\n\nSelect a category:", sel.Title, sel.Source)
}

// OutcomeText is the chat message reporting a resolved capture. Outcomes the
// owner needs no message for yield "".
func OutcomeText(o pending.Outcome) string {
	switch o.Kind {
	case pending.OutcomeSaved:
		if o.Origin == pending.OriginTimeout {
			return fmt.Sprintf("Timeout: No category selected. Saved to \"%s\"", o.CategoryName)
		}
		title, source := "", ""
		if o.Selection != nil {
			title, source = o.Selection.Title, o.Selection.Source
		}
		return fmt.Sprintf("Saved to \"%s\"\n\nTitle: %s\nSource: %s", o.CategoryName, title, source)
	case pending.OutcomeCancelled:
		return cancelledText
	case pending.OutcomeFailed:
		if o.Origin == pending.OriginTimeout && o.Selection != nil {
			return fmt.Sprintf("❌ Timeout: could not save \"%s\". Please send it again.", o.Selection.Title)
		}
		return "❌ Error saving article. Please send it again."
	}
	return ""
}

// callbackAnswer is the short toast shown on the pressed button.
func callbackAnswer(o pending.Outcome) string {
	switch o.Kind {
	case pending.OutcomeNothing:
		return expiredAnswer
	case pending.OutcomeFailed:
		return failedAnswer
	}
	return ""
}
