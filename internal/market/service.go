package market

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// Service manages marketplace listings.
type Service struct {
	gw *gateway.Gateway
}

// NewService constructs a marketplace service.
func NewService(gw *gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Active returns active listings, newest first.
func (s *Service) Active(ctx context.Context, limit int) ([]Listing, error) {
	var listings []Listing
	err := s.gw.From("listings").
		Eq("status", StatusActive).
		Order("created_at", true).
		Limit(limit).
		Find(ctx, &listings)
	if err != nil {
		return nil, fmt.Errorf("market: list active: %w", err)
	}
	return listings, nil
}

// BySeller returns one seller's listings, newest first.
func (s *Service) BySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	var listings []Listing
	err := s.gw.From("listings").Eq("seller_id", sellerID).Order("created_at", true).Find(ctx, &listings)
	if err != nil {
		return nil, fmt.Errorf("market: list by seller: %w", err)
	}
	return listings, nil
}

// Add creates a listing.
func (s *Service) Add(ctx context.Context, listing *Listing) error {
	if listing.SellerID == "" || listing.Title == "" {
		return fmt.Errorf("market: add listing: seller_id and title are required")
	}
	if err := s.gw.Insert(ctx, listing); err != nil {
		return fmt.Errorf("market: add listing: %w", err)
	}
	return nil
}

// Update patches a listing.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (Listing, error) {
	var listing Listing
	if err := s.gw.Update(ctx, &listing, id, fields); err != nil {
		return Listing{}, fmt.Errorf("market: update listing: %w", err)
	}
	return listing, nil
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Listing{}, id); err != nil {
		return fmt.Errorf("market: delete listing: %w", err)
	}
	return nil
}
