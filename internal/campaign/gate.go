// Package campaign is the read-only gate in front of campaign metadata.
// Donation and subscription creation consult it; nothing here writes
// campaign rows except the aggregate columns owned by the aggregator.
package campaign

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
)

type Gate struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
}

func NewGate(uowFactory unitofwork.RepositoryFactory) *Gate {
	// Campaign metadata changes rarely; a short TTL keeps the gate off the
	// hot path without serving stale acceptance windows for long.
	return &Gate{
		uowFactory: uowFactory,
		cache:      gocache.New(30*time.Second, 5*time.Minute),
	}
}

// Get returns the campaign, from cache when fresh.
func (g *Gate) Get(ctx context.Context, campaignId uuid.UUID) (*entity.Campaign, error) {
	key := campaignId.String()
	if cached, ok := g.cache.Get(key); ok {
		return cached.(*entity.Campaign), nil
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	c, err := uow.CampaignRepository().FindOne(ctx, specification.ByID{ID: campaignId})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("campaign", key)
	}

	g.cache.Set(key, c, gocache.DefaultExpiration)
	return c, nil
}

// Invalidate drops a cached campaign. The aggregator calls it after an
// authoritative recompute so summary reads pick up the fresh columns.
func (g *Gate) Invalidate(campaignId uuid.UUID) {
	g.cache.Delete(campaignId.String())
}

// CheckAccepts validates that the campaign can take a donation of the given
// amount and currency right now.
func (g *Gate) CheckAccepts(ctx context.Context, campaignId uuid.UUID, amount float64, currency string) (*entity.Campaign, error) {
	c, err := g.Get(ctx, campaignId)
	if err != nil {
		return nil, err
	}

	if !c.AcceptsDonations(time.Now()) {
		return nil, apperrors.Conflict("campaign %s is not accepting donations", campaignId)
	}
	if c.MinimumDonation > 0 && amount < c.MinimumDonation {
		return nil, apperrors.Validation("amount", "below campaign minimum")
	}
	if c.Currency != "" && !strings.EqualFold(c.Currency, currency) {
		return nil, apperrors.Validation("currency", "campaign accepts "+c.Currency)
	}
	return c, nil
}
