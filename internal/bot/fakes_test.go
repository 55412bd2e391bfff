package bot

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/metadata"
	"github.com/lysyi3m/pitki/internal/pending"
	"github.com/lysyi3m/pitki/internal/tasks"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return tgbotapi.Message{}, s.sendErr
	}
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (s *fakeSender) lastText() string {
	texts := s.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeCategories struct {
	byOwner   map[string][]database.Category
	seeded    map[string][]string
	listErr   error
	seedErr   error
	createErr error
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{
		byOwner: make(map[string][]database.Category),
		seeded:  make(map[string][]string),
	}
}

func (f *fakeCategories) ListCategories(_ context.Context, ownerID string) ([]database.Category, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byOwner[ownerID], nil
}

func (f *fakeCategories) CreateCategory(_ context.Context, ownerID, name string) (*database.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, c := range f.byOwner[ownerID] {
		if c.Name == name {
			return nil, database.ErrConflict
		}
	}
	c := database.Category{ID: "cat-" + name, OwnerID: ownerID, Name: name}
	f.byOwner[ownerID] = append(f.byOwner[ownerID], c)
	return &c, nil
}

func (f *fakeCategories) SeedCategories(_ context.Context, ownerID string, names []string) (int, error) {
	if f.seedErr != nil {
		return 0, f.seedErr
	}
	f.seeded[ownerID] = names
	return len(names), nil
}

type fakeCoordinator struct {
	mu         sync.Mutex
	candidates []pending.Candidate
	choices    []pending.Choice
	registerFn func(pending.Candidate) (*pending.Selection, error)
	outcome    pending.Outcome
}

func (c *fakeCoordinator) Register(_ context.Context, candidate pending.Candidate) (*pending.Selection, error) {
	c.mu.Lock()
	c.candidates = append(c.candidates, candidate)
	c.mu.Unlock()
	if c.registerFn != nil {
		return c.registerFn(candidate)
	}
	return &pending.Selection{Candidate: candidate, CorrelationID: pending.CorrelationID(candidate.OwnerID, "t1")}, nil
}

func (c *fakeCoordinator) Resolve(_ context.Context, ownerID string, choice pending.Choice) pending.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.choices = append(c.choices, choice)
	out := c.outcome
	out.OwnerID = ownerID
	return out
}

type fakeFetcher struct {
	calls []string
	meta  metadata.Metadata
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) metadata.Metadata {
	f.calls = append(f.calls, pageURL)
	return f.meta
}

type fakeQueue struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (q *fakeQueue) Start() {}
func (q *fakeQueue) Stop()  {}

func (q *fakeQueue) EnqueueTask(task tasks.TaskInterface) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, task)
	return nil
}

var errBoom = errors.New("boom")

type harness struct {
	bot         *Bot
	sender      *fakeSender
	categories  *fakeCategories
	coordinator *fakeCoordinator
	fetcher     *fakeFetcher
	queue       *fakeQueue
}

func newHarness() *harness {
	h := &harness{
		sender:      &fakeSender{},
		categories:  newFakeCategories(),
		coordinator: &fakeCoordinator{},
		fetcher:     &fakeFetcher{meta: metadata.Metadata{Title: "A Repo", Thumbnail: "https://github.com/og.png"}},
		queue:       &fakeQueue{},
	}
	h.bot = New(h.sender, h.categories, h.coordinator, h.fetcher, h.queue, Options{
		DefaultCategories: []string{"Tech", "Uncategorized"},
	})
	return h
}

const testUserID = 4242

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUserID},
		Chat:      &tgbotapi.Chat{ID: testUserID},
		Text:      text,
	}}
}

func commandUpdate(command, args string) tgbotapi.Update {
	text := "/" + command
	if args != "" {
		text += " " + args
	}
	update := textUpdate(text)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return update
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: testUserID},
		Message: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: testUserID},
		},
		Data: data,
	}}
}
