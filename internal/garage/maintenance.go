package garage

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
)

// MaintenanceService manages a car's service history.
type MaintenanceService struct {
	gw *gateway.Gateway
}

func NewMaintenanceService(gw *gateway.Gateway) *MaintenanceService {
	return &MaintenanceService{gw: gw}
}

// List returns a car's maintenance logs, newest first.
func (s *MaintenanceService) List(ctx context.Context, carID string) ([]MaintenanceLog, error) {
	var logs []MaintenanceLog
	err := s.gw.From("maintenance_logs").Eq("car_id", carID).Order("created_at", true).Find(ctx, &logs)
	if err != nil {
		return nil, fmt.Errorf("garage: list maintenance: %w", err)
	}
	return logs, nil
}

func (s *MaintenanceService) Add(ctx context.Context, log *MaintenanceLog) error {
	if log.CarID == "" || log.Title == "" {
		return fmt.Errorf("garage: add maintenance: car_id and title are required")
	}
	if err := s.gw.Insert(ctx, log); err != nil {
		return fmt.Errorf("garage: add maintenance: %w", err)
	}
	return nil
}

func (s *MaintenanceService) Update(ctx context.Context, id string, fields map[string]any) (MaintenanceLog, error) {
	var log MaintenanceLog
	if err := s.gw.Update(ctx, &log, id, fields); err != nil {
		return MaintenanceLog{}, fmt.Errorf("garage: update maintenance: %w", err)
	}
	return log, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &MaintenanceLog{}, id); err != nil {
		return fmt.Errorf("garage: delete maintenance: %w", err)
	}
	return nil
}
