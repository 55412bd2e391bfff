package pending

import (
	"strings"
	"time"
)

// Candidate is a capture waiting to be filed under a category.
type Candidate struct {
	OwnerID   string `json:"owner_id"`
	ChatID    int64  `json:"chat_id"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Source    string `json:"source"`
	RawText   string `json:"raw_text"`
}

type Selection struct {
	Candidate
	CorrelationID string    `json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Token is the owner-relative part of the correlation id, short enough to
// travel inside chat button payloads.
func (s Selection) Token() string {
	_, token, _ := strings.Cut(s.CorrelationID, ":")
	return token
}

func CorrelationID(ownerID, token string) string {
	return ownerID + ":" + token
}

func ownerOf(correlationID string) string {
	owner, _, _ := strings.Cut(correlationID, ":")
	return owner
}

// Choice is the owner's answer to a category prompt. An empty CorrelationID
// resolves the owner's oldest pending capture.
type Choice struct {
	CorrelationID string
	CategoryID    string
	Cancel        bool
	ChatID        int64
	MessageID     int
}

type OutcomeKind string

const (
	OutcomeSaved     OutcomeKind = "saved"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeNothing   OutcomeKind = "nothing"
	OutcomeFailed    OutcomeKind = "failed"
)

type Origin string

const (
	OriginUser    Origin = "user"
	OriginTimeout Origin = "timeout"
)

type Outcome struct {
	Kind         OutcomeKind
	Origin       Origin
	OwnerID      string
	ChatID       int64
	MessageID    int
	Selection    *Selection
	CategoryName string
	ArticleID    string
	Err          error
}
