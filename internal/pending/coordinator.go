package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/metrics"
)

const (
	DefaultTimeout          = 60 * time.Second
	DefaultFallbackName     = "Uncategorized"
	defaultWriteTimeout     = 30 * time.Second
	redisEntryTTLMultiplier = 2
)

var (
	ErrNoCategories     = errors.New("owner has no categories")
	ErrCategoryNotFound = errors.New("category not found")
)

type CategoryStore interface {
	ListCategories(ctx context.Context, ownerID string) ([]database.Category, error)
	GetCategory(ctx context.Context, ownerID, id string) (*database.Category, error)
	GetCategoryByName(ctx context.Context, ownerID, name string) (*database.Category, error)
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, input database.ArticleInput) (*database.Article, error)
}

// Notifier delivers the category prompt and reports every outcome back to the
// owner.
type Notifier interface {
	Prompt(ctx context.Context, sel Selection, categories []database.Category) error
	Notify(ctx context.Context, outcome Outcome) error
}

type Options struct {
	Timeout      time.Duration
	FallbackName string
	Store        Store
	Scheduler    Scheduler
	WriteTimeout time.Duration
}

// RedisEntryTTL is how long a shared store should keep an entry for the given
// selection timeout. It outlives the timer so the timeout path still finds it.
func RedisEntryTTL(timeout time.Duration) time.Duration {
	return timeout * redisEntryTTLMultiplier
}

type Coordinator struct {
	categories   CategoryStore
	articles     ArticleStore
	notifier     Notifier
	store        Store
	scheduler    Scheduler
	timeout      time.Duration
	fallbackName string
	writeTimeout time.Duration
	seq          atomic.Uint64
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewCoordinator(categories CategoryStore, articles ArticleStore, notifier Notifier, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.FallbackName == "" {
		opts.FallbackName = DefaultFallbackName
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		categories:   categories,
		articles:     articles,
		notifier:     notifier,
		store:        opts.Store,
		scheduler:    opts.Scheduler,
		timeout:      opts.Timeout,
		fallbackName: opts.FallbackName,
		writeTimeout: opts.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

func (c *Coordinator) nextCorrelationID(ownerID string) string {
	token := strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(c.seq.Add(1), 36)
	return CorrelationID(ownerID, token)
}

// Register stores the candidate, arms its timeout and prompts the owner to
// pick a category. The entry is stored before the prompt goes out so an
// immediate answer always finds it.
func (c *Coordinator) Register(ctx context.Context, candidate Candidate) (*Selection, error) {
	categories, err := c.categories.ListCategories(ctx, candidate.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	sel := Selection{
		Candidate:     candidate,
		CorrelationID: c.nextCorrelationID(candidate.OwnerID),
		CreatedAt:     time.Now().UTC(),
	}

	if err := c.store.Put(ctx, sel); err != nil {
		return nil, fmt.Errorf("failed to store pending selection: %w", err)
	}
	metrics.PendingSelections.Inc()

	c.scheduler.Schedule(sel.CorrelationID, c.timeout, func() {
		c.expire(sel.CorrelationID)
	})

	if err := c.notifier.Prompt(ctx, sel, categories); err != nil {
		c.scheduler.Cancel(sel.CorrelationID)
		if taken, takeErr := c.store.Take(ctx, sel.CorrelationID); takeErr != nil {
			slog.Error("Failed to drop unprompted selection", "correlation_id", sel.CorrelationID, "error", takeErr)
		} else if taken != nil {
			metrics.PendingSelections.Dec()
		}
		return nil, fmt.Errorf("failed to send category prompt: %w", err)
	}

	slog.Debug("Pending selection registered",
		"correlation_id", sel.CorrelationID,
		"owner_id", sel.OwnerID,
		"source", sel.Source,
		"timeout", c.timeout)

	return &sel, nil
}

// Resolve applies the owner's choice to the matching pending entry. The entry
// is removed before any write, so a repeated or concurrent choice for the
// same entry resolves to OutcomeNothing.
func (c *Coordinator) Resolve(ctx context.Context, ownerID string, choice Choice) Outcome {
	outcome := Outcome{
		Origin:    OriginUser,
		OwnerID:   ownerID,
		ChatID:    choice.ChatID,
		MessageID: choice.MessageID,
	}

	sel, err := c.take(ctx, ownerID, choice.CorrelationID)
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = err
		c.emit(ctx, outcome)
		return outcome
	}
	if sel == nil {
		outcome.Kind = OutcomeNothing
		c.emit(ctx, outcome)
		return outcome
	}

	c.scheduler.Cancel(sel.CorrelationID)
	metrics.PendingSelections.Dec()

	outcome.Selection = sel
	if outcome.ChatID == 0 {
		outcome.ChatID = sel.ChatID
	}

	if choice.Cancel {
		outcome.Kind = OutcomeCancelled
		slog.Debug("Pending selection cancelled", "correlation_id", sel.CorrelationID, "owner_id", ownerID)
		c.emit(ctx, outcome)
		return outcome
	}

	category, err := c.categories.GetCategory(ctx, ownerID, choice.CategoryID)
	if err == nil && category == nil {
		err = fmt.Errorf("category %s: %w", choice.CategoryID, ErrCategoryNotFound)
	}
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = err
		c.emit(ctx, outcome)
		return outcome
	}

	c.save(ctx, &outcome, category)
	c.emit(ctx, outcome)
	return outcome
}

func (c *Coordinator) take(ctx context.Context, ownerID, correlationID string) (*Selection, error) {
	if correlationID == "" {
		return c.store.TakeFirst(ctx, ownerID)
	}
	if ownerOf(correlationID) != ownerID {
		return nil, nil
	}
	return c.store.Take(ctx, correlationID)
}

// expire files an unanswered capture under the fallback category.
func (c *Coordinator) expire(correlationID string) {
	ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
	defer cancel()

	sel, err := c.store.Take(ctx, correlationID)
	if err != nil {
		slog.Error("Failed to take expired selection", "correlation_id", correlationID, "error", err)
		return
	}
	if sel == nil {
		return
	}
	metrics.PendingSelections.Dec()

	outcome := Outcome{
		Origin:    OriginTimeout,
		OwnerID:   sel.OwnerID,
		ChatID:    sel.ChatID,
		Selection: sel,
	}

	category, err := c.categories.GetCategoryByName(ctx, sel.OwnerID, c.fallbackName)
	if err == nil && category == nil {
		err = fmt.Errorf("fallback category %q: %w", c.fallbackName, ErrCategoryNotFound)
	}
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = err
		c.emit(ctx, outcome)
		return
	}

	c.save(ctx, &outcome, category)
	c.emit(ctx, outcome)
}

func (c *Coordinator) save(ctx context.Context, outcome *Outcome, category *database.Category) {
	sel := outcome.Selection

	input := database.ArticleInput{
		OwnerID:    sel.OwnerID,
		Title:      sel.Title,
		Source:     sel.Source,
		CategoryID: &category.ID,
	}
	if sel.URL != "" {
		input.URL = &sel.URL
	} else {
		input.Notes = &sel.RawText
	}
	if sel.Thumbnail != "" {
		input.ThumbnailURL = &sel.Thumbnail
	}

	article, err := c.articles.CreateArticle(ctx, input)
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Err = fmt.Errorf("failed to save article: %w", err)
		return
	}

	outcome.Kind = OutcomeSaved
	outcome.CategoryName = category.Name
	outcome.ArticleID = article.ID
}

func (c *Coordinator) emit(ctx context.Context, outcome Outcome) {
	metrics.SelectionOutcomes.WithLabelValues(string(outcome.Kind), string(outcome.Origin)).Inc()

	correlationID := ""
	if outcome.Selection != nil {
		correlationID = outcome.Selection.CorrelationID
	}

	if outcome.Kind == OutcomeFailed {
		slog.Error("Pending selection failed",
			"correlation_id", correlationID,
			"owner_id", outcome.OwnerID,
			"origin", outcome.Origin,
			"error", outcome.Err)
	} else {
		slog.Info("Pending selection resolved",
			"correlation_id", correlationID,
			"owner_id", outcome.OwnerID,
			"outcome", outcome.Kind,
			"origin", outcome.Origin,
			"category", outcome.CategoryName)
	}

	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, outcome); err != nil {
		slog.Warn("Failed to notify owner", "owner_id", outcome.OwnerID, "outcome", outcome.Kind, "error", err)
	}
}

// Close stops all outstanding timers and waits for expirations already in
// flight. Entries left in the store are not saved.
func (c *Coordinator) Close() {
	c.scheduler.Stop()
	c.cancel()
}
