package garage

import (
	"context"

	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"github.com/midniteauto/backend/internal/syncstore"
	"go.uber.org/zap"
)

// Sync-store adapters for the scoped garage lists. Each store mirrors one
// car's rows: optimistic mutations land immediately, server truth is reloaded
// on every change notification for the car. These constructors are the
// client-mirror entry points, consumed by app clients embedding the gateway;
// the HTTP server reads through the plain services instead.

func subscribeScoped(gw *gateway.Gateway, table string) func(context.Context, string) (<-chan struct{}, func(), error) {
	return func(ctx context.Context, scope string) (<-chan struct{}, func(), error) {
		changes, cancel := gw.Hub().Subscribe(ctx, table, "car_id", scope)
		return realtime.Signal(ctx, changes), cancel, nil
	}
}

// NewPartStore builds an optimistic store over one car's parts list, newest
// first.
func NewPartStore(gw *gateway.Gateway, logger *zap.Logger, onError func(string, error)) (*syncstore.Store[Part], error) {
	parts := NewPartService(gw)
	return syncstore.NewStore(syncstore.Config[Part]{
		Remote: syncstore.Remote[Part]{
			Load: func(ctx context.Context, carID string) ([]Part, error) {
				return parts.List(ctx, carID)
			},
			Create: func(ctx context.Context, carID string, draft Part) (Part, error) {
				draft.CarID = carID
				if err := parts.Add(ctx, &draft); err != nil {
					return Part{}, err
				}
				return draft, nil
			},
			Update: func(ctx context.Context, id string, row Part) (Part, error) {
				return parts.Update(ctx, id, map[string]any{
					"name":        row.Name,
					"category":    row.Category,
					"brand":       row.Brand,
					"price_cents": row.PriceCents,
					"installed":   row.Installed,
				})
			},
			Delete: func(ctx context.Context, id string) error {
				return parts.Delete(ctx, id)
			},
			Subscribe: subscribeScoped(gw, "car_parts"),
		},
		RowID:     func(p Part) string { return p.ID },
		Placement: syncstore.PlaceHead,
		Logger:    logger,
		OnError:   onError,
	})
}

// NewMaintenanceStore builds an optimistic store over one car's maintenance
// log, newest first.
func NewMaintenanceStore(gw *gateway.Gateway, logger *zap.Logger, onError func(string, error)) (*syncstore.Store[MaintenanceLog], error) {
	logs := NewMaintenanceService(gw)
	return syncstore.NewStore(syncstore.Config[MaintenanceLog]{
		Remote: syncstore.Remote[MaintenanceLog]{
			Load: func(ctx context.Context, carID string) ([]MaintenanceLog, error) {
				return logs.List(ctx, carID)
			},
			Create: func(ctx context.Context, carID string, draft MaintenanceLog) (MaintenanceLog, error) {
				draft.CarID = carID
				if err := logs.Add(ctx, &draft); err != nil {
					return MaintenanceLog{}, err
				}
				return draft, nil
			},
			Update: func(ctx context.Context, id string, row MaintenanceLog) (MaintenanceLog, error) {
				return logs.Update(ctx, id, map[string]any{
					"title":        row.Title,
					"notes":        row.Notes,
					"odometer":     row.Odometer,
					"cost_cents":   row.CostCents,
					"performed_at": row.PerformedAt,
				})
			},
			Delete: func(ctx context.Context, id string) error {
				return logs.Delete(ctx, id)
			},
			Subscribe: subscribeScoped(gw, "maintenance_logs"),
		},
		RowID:     func(m MaintenanceLog) string { return m.ID },
		Placement: syncstore.PlaceHead,
		Logger:    logger,
		OnError:   onError,
	})
}

// NewTaskStore builds an optimistic store over one car's task list, newest
// first.
func NewTaskStore(gw *gateway.Gateway, logger *zap.Logger, onError func(string, error)) (*syncstore.Store[Task], error) {
	tasks := NewTaskService(gw)
	return syncstore.NewStore(syncstore.Config[Task]{
		Remote: syncstore.Remote[Task]{
			Load: func(ctx context.Context, carID string) ([]Task, error) {
				return tasks.List(ctx, carID)
			},
			Create: func(ctx context.Context, carID string, draft Task) (Task, error) {
				draft.CarID = carID
				if err := tasks.Add(ctx, &draft); err != nil {
					return Task{}, err
				}
				return draft, nil
			},
			Update: func(ctx context.Context, id string, row Task) (Task, error) {
				return tasks.Update(ctx, id, map[string]any{
					"title": row.Title,
					"done":  row.Done,
				})
			},
			Delete: func(ctx context.Context, id string) error {
				return tasks.Delete(ctx, id)
			},
			Subscribe: subscribeScoped(gw, "car_tasks"),
		},
		RowID:     func(t Task) string { return t.ID },
		Placement: syncstore.PlaceHead,
		Logger:    logger,
		OnError:   onError,
	})
}
