// Package feed implements the personalized article feed: fetching,
// category filtering, likes, and interaction tracking.
package feed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

// Category names accepted by Filter. CategoryAll matches every article.
const (
	CategoryAll        = "All"
	CategoryTechnology = "Technology"
	CategoryBusiness   = "Business"
	CategoryHealth     = "Health"
	CategoryScience    = "Science"
)

// Categories lists the filter tabs in display order.
var Categories = []string{CategoryAll, CategoryTechnology, CategoryBusiness, CategoryHealth, CategoryScience}

// Interaction actions reported to the backend.
const (
	ActionClick = "click"
	ActionLike  = "like"
	ActionShare = "share"
)

// Client is the subset of the API client the feed needs.
type Client interface {
	Feed(ctx context.Context, userID string, limit int) apiclient.Envelope[apiclient.FeedResponse]
	TrackClick(ctx context.Context, event apiclient.ClickEvent) apiclient.Envelope[apiclient.StatusResponse]
}

// Config holds the per-user feed defaults.
type Config struct {
	UserID          string
	Limit           int
	ReadTimeSeconds int
	ScrollDepth     float64
	Logger          *slog.Logger
}

// Feed holds the last fetched articles and the local likes set.
type Feed struct {
	client Client
	cfg    Config
	policy *bluemonday.Policy
	logger *slog.Logger

	mu       sync.Mutex
	articles []apiclient.Article
	liked    map[string]bool
}

// New constructs a Feed.
func New(client Client, cfg Config) *Feed {
	if cfg.Limit <= 0 {
		cfg.Limit = 20
	}
	return &Feed{
		client: client,
		cfg:    cfg,
		policy: bluemonday.StrictPolicy(),
		logger: logging.NewComponentLogger(cfg.Logger, "feed"),
		liked:  map[string]bool{},
	}
}

// Refresh fetches the feed and replaces the cached articles. Excerpts are
// reduced to plain text.
func (f *Feed) Refresh(ctx context.Context) ([]apiclient.Article, error) {
	env := f.client.Feed(ctx, f.cfg.UserID, f.cfg.Limit)
	if !env.Success || env.Data == nil {
		cause := env.Err
		if cause == nil {
			cause = errors.New(env.Error)
		}
		return nil, fmt.Errorf("load feed: %w", cause)
	}
	articles := make([]apiclient.Article, 0, len(env.Data.Feed))
	for _, article := range env.Data.Feed {
		article.Excerpt = f.Sanitize(article.Excerpt)
		articles = append(articles, article)
	}

	f.mu.Lock()
	f.articles = articles
	f.mu.Unlock()
	f.logger.Debug("feed refreshed", logging.Int("articles", len(articles)))
	return append([]apiclient.Article(nil), articles...), nil
}

// Articles returns the cached articles in the given category.
func (f *Feed) Articles(category string) []apiclient.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Filter(f.articles, category)
}

// Sanitize strips markup from an excerpt.
func (f *Feed) Sanitize(excerpt string) string {
	cleaned := html.UnescapeString(f.policy.Sanitize(excerpt))
	return strings.Join(strings.Fields(cleaned), " ")
}

// ToggleLike flips the like state of an article, reports the interaction when
// it becomes liked, and returns the new state.
func (f *Feed) ToggleLike(ctx context.Context, article apiclient.Article) (bool, error) {
	f.mu.Lock()
	liked := !f.liked[article.ID]
	if liked {
		f.liked[article.ID] = true
	} else {
		delete(f.liked, article.ID)
	}
	f.mu.Unlock()

	if !liked {
		return false, nil
	}
	return true, f.TrackClick(ctx, article, ActionLike)
}

// Liked reports whether the article is in the likes set.
func (f *Feed) Liked(articleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liked[articleID]
}

// TrackClick reports an interaction with the configured read time and scroll
// depth.
func (f *Feed) TrackClick(ctx context.Context, article apiclient.Article, action string) error {
	if strings.TrimSpace(article.ID) == "" {
		return services.Wrap(services.ErrValidation, "feed", "track click", "article id is required", nil)
	}
	env := f.client.TrackClick(ctx, apiclient.ClickEvent{
		UserID:          f.cfg.UserID,
		ArticleID:       article.ID,
		Action:          action,
		ReadTimeSeconds: f.cfg.ReadTimeSeconds,
		ScrollDepth:     f.cfg.ScrollDepth,
	})
	if !env.Success {
		logging.WarnWithContext(logging.WithContext(ctx, f.logger), "track click failed", "track_click_failed",
			logging.String("article_id", article.ID),
			logging.String("reason", env.Error),
		)
		if env.Err != nil {
			return fmt.Errorf("track %s: %w", action, env.Err)
		}
		return fmt.Errorf("track %s: %s", action, env.Error)
	}
	return nil
}

// Filter returns the articles in category; CategoryAll or an empty category
// returns everything.
func Filter(articles []apiclient.Article, category string) []apiclient.Article {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return append([]apiclient.Article(nil), articles...)
	}
	var out []apiclient.Article
	for _, article := range articles {
		if strings.EqualFold(article.Category, category) {
			out = append(out, article)
		}
	}
	return out
}
