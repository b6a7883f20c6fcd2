package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/logging"
	"mediastudio/internal/services"
)

const defaultCampaignGoal = "engagement"

// Client is the subset of the API client used for generation.
type Client interface {
	GenerateContent(ctx context.Context, content apiclient.ContentRequest) apiclient.Envelope[apiclient.ContentResponse]
}

// Generator requests content packages from the backend.
type Generator struct {
	client       Client
	campaignGoal string
	logger       *slog.Logger
}

// NewGenerator builds a Generator. An empty goal uses "engagement".
func NewGenerator(client Client, campaignGoal string, logger *slog.Logger) *Generator {
	if strings.TrimSpace(campaignGoal) == "" {
		campaignGoal = defaultCampaignGoal
	}
	return &Generator{
		client:       client,
		campaignGoal: campaignGoal,
		logger:       logging.NewComponentLogger(logger, "social"),
	}
}

// Generate requests posts about topic for the brand's platforms, or the
// override platforms when given.
func (g *Generator) Generate(ctx context.Context, brand Brand, topic string, platforms ...string) (apiclient.ContentPackage, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return apiclient.ContentPackage{}, services.Wrap(services.ErrValidation, "social", "generate", "topic is required", nil)
	}
	if strings.TrimSpace(brand.ID) == "" {
		return apiclient.ContentPackage{}, services.Wrap(services.ErrValidation, "social", "generate", "brand is required", nil)
	}
	if len(platforms) == 0 {
		platforms = brand.Platforms
	}

	env := g.client.GenerateContent(ctx, apiclient.ContentRequest{
		BrandID:      brand.ID,
		Topic:        topic,
		Platforms:    platforms,
		CampaignGoal: g.campaignGoal,
	})
	if !env.Success || env.Data == nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "content generation failed", "content_generation_failed",
			logging.String("brand_id", brand.ID),
			logging.String("reason", env.Error),
		)
		cause := env.Err
		if cause == nil {
			cause = errors.New(env.Error)
		}
		return apiclient.ContentPackage{}, fmt.Errorf("generate content: %w", cause)
	}
	g.logger.Info("content generated",
		logging.String("brand_id", brand.ID),
		logging.Int("platforms", len(env.Data.ContentPackage.Platforms)),
	)
	return env.Data.ContentPackage, nil
}

// PlatformNames returns the platforms of a package in sorted order.
func PlatformNames(pkg apiclient.ContentPackage) []string {
	names := make([]string, 0, len(pkg.Platforms))
	for name := range pkg.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
