package garage

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// PartService manages the parts list of a car.
type PartService struct {
	gw *gateway.Gateway
}

func NewPartService(gw *gateway.Gateway) *PartService {
	return &PartService{gw: gw}
}

// List returns a car's parts, newest first.
func (s *PartService) List(ctx context.Context, carID string) ([]Part, error) {
	var parts []Part
	err := s.gw.From("car_parts").Eq("car_id", carID).Order("created_at", true).Find(ctx, &parts)
	if err != nil {
		return nil, fmt.Errorf("garage: list parts: %w", err)
	}
	return parts, nil
}

func (s *PartService) Add(ctx context.Context, part *Part) error {
	if part.CarID == "" || part.Name == "" {
		return fmt.Errorf("garage: add part: car_id and name are required")
	}
	if err := s.gw.Insert(ctx, part); err != nil {
		return fmt.Errorf("garage: add part: %w", err)
	}
	return nil
}

func (s *PartService) Update(ctx context.Context, id string, fields map[string]any) (Part, error) {
	var part Part
	if err := s.gw.Update(ctx, &part, id, fields); err != nil {
		return Part{}, fmt.Errorf("garage: update part: %w", err)
	}
	return part, nil
}

func (s *PartService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Part{}, id); err != nil {
		return fmt.Errorf("garage: delete part: %w", err)
	}
	return nil
}
