// Package repository defines persistence for campaigns, prospects and test
// runs, with an embedded in-memory store and a PostgreSQL implementation in
// the postgres subpackage.
package repository

import (
	"context"
	"errors"

	"github.com/eurkai/prospecting/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for the prospect pipeline.
type Store interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, c *domain.Campaign) error

	CreateProspect(ctx context.Context, p *domain.Prospect) error
	GetProspect(ctx context.Context, id string) (*domain.Prospect, error)
	// GetProspectByToken resolves a landing token to its prospect.
	GetProspectByToken(ctx context.Context, token string) (*domain.Prospect, error)
	// ListProspects returns the campaign's prospects ordered by visibility
	// score descending, unscored prospects last. An empty status matches all.
	ListProspects(ctx context.Context, campaignID string, status domain.ProspectStatus) ([]*domain.Prospect, error)
	UpdateProspect(ctx context.Context, p *domain.Prospect) error
	CountProspects(ctx context.Context, campaignID string) (int, error)

	CreateRun(ctx context.Context, r *domain.TestRun) error
	// ListRuns returns a prospect's runs in chronological order.
	ListRuns(ctx context.Context, prospectID string) ([]*domain.TestRun, error)
}
