package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/pitki/internal/database"
)

const (
	sortOldest = "oldest"
	dateOnly   = "2006-01-02"
)

func parseArticleQuery(c *gin.Context, ownerID string) (database.ArticleQuery, error) {
	query := database.ArticleQuery{
		OwnerID:    ownerID,
		CategoryID: strings.TrimSpace(c.Query("category")),
		Source:     strings.TrimSpace(c.Query("source")),
		Search:     strings.TrimSpace(c.Query("search")),
		Ascending:  c.Query("sort") == sortOldest,
	}

	if raw := strings.TrimSpace(c.Query("from_date")); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			return query, fmt.Errorf("invalid from_date: %q", raw)
		}
		query.From = &from
	}

	if raw := strings.TrimSpace(c.Query("to_date")); raw != "" {
		to, wholeDay, err := parseDate(raw)
		if err != nil {
			return query, fmt.Errorf("invalid to_date: %q", raw)
		}
		if wholeDay {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		query.To = &to
	}

	return query, nil
}

// parseDate accepts RFC 3339 and the formats dateparse understands. Bare
// dates are read in the local zone and reported as whole days.
func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnly, value, time.Local); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	t, err := dateparse.ParseIn(value, time.Local)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

// decodeArticlePatch reads a partial update. A key that is absent leaves the
// column alone; an explicit null clears it.
func decodeArticlePatch(body io.Reader) (database.ArticlePatch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return database.ArticlePatch{}, errors.New("invalid request body")
	}

	var (
		patch database.ArticlePatch
		err   error
	)
	if patch.Title, err = decodeField(raw, "title"); err != nil {
		return patch, err
	}
	if patch.CategoryID, err = decodeField(raw, "category_id"); err != nil {
		return patch, err
	}
	if patch.Notes, err = decodeField(raw, "notes"); err != nil {
		return patch, err
	}

	// the web app sends "" for "no category"
	if v := patch.CategoryID.Value; v != nil && strings.TrimSpace(*v) == "" {
		patch.CategoryID = database.NullField[string]()
	}

	return patch, nil
}

func decodeField(raw map[string]json.RawMessage, key string) (database.Field[string], error) {
	value, ok := raw[key]
	if !ok {
		return database.Field[string]{}, nil
	}
	if strings.TrimSpace(string(value)) == "null" {
		return database.NullField[string](), nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return database.Field[string]{}, fmt.Errorf("%s must be a string or null", key)
	}
	return database.SetField(s), nil
}
