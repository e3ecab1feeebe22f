package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/midniteauto/backend/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrRowNotFound indicates no row matched the mutation or single-row fetch.
	ErrRowNotFound = errors.New("gateway: row not found")
	// ErrMultipleRows indicates a single-row fetch matched more than one row.
	ErrMultipleRows = errors.New("gateway: multiple rows matched")
	// ErrNoFields indicates an update carried no field changes.
	ErrNoFields = errors.New("gateway: no fields to update")

	errMissingDatabase = errors.New("gateway: database handle is required")
	noOpLogger         = zap.NewNop()
)

// Row is any persisted record the gateway can move through its primitives.
type Row interface {
	TableName() string
	RowID() string
}

// ScopedRow is a row belonging to a scoped list (one car's parts, one chat's
// messages). Change notifications for scoped rows carry the parent key so
// subscriptions filtered to that key receive them.
type ScopedRow interface {
	Row
	Scope() (column string, value string)
}

// ServerAssigned lets the gateway stamp server-computed fields (id, created_at)
// onto a row during insert when the caller left them unset.
type ServerAssigned interface {
	AssignServerFields(id string, now time.Time)
}

// IDProvider issues server-side row identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// Config describes the dependencies of a Gateway.
type Config struct {
	Database   *gorm.DB
	Hub        *realtime.Hub
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Gateway is the typed data gateway: query, insert, update, delete, and
// realtime change publication over one relational store. Every mutation
// publishes a change notification for the affected table and scope.
type Gateway struct {
	db    *gorm.DB
	hub   *realtime.Hub
	clock func() time.Time
	ids   IDProvider
	log   *zap.Logger
}

// New constructs a Gateway.
func New(cfg Config) (*Gateway, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := cfg.IDProvider
	if ids == nil {
		ids = NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Gateway{
		db:    cfg.Database,
		hub:   cfg.Hub,
		clock: clock,
		ids:   ids,
		log:   logger,
	}, nil
}

// Hub exposes the change hub so callers can open scoped subscriptions.
func (g *Gateway) Hub() *realtime.Hub {
	return g.hub
}

// Insert persists the row, stamping a server id and creation time when unset,
// and publishes an insert notification. On return the argument holds the
// authoritative row.
func (g *Gateway) Insert(ctx context.Context, row Row) error {
	if assignable, ok := row.(ServerAssigned); ok {
		id, err := g.ids.NewID()
		if err != nil {
			return fmt.Errorf("gateway: insert into %s: %w", row.TableName(), err)
		}
		assignable.AssignServerFields(id, g.clock().UTC())
	}
	if err := g.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("gateway: insert into %s: %w", row.TableName(), err)
	}
	g.publish(realtime.ActionInsert, row)
	return nil
}

// Update patches the row with the given id, reloads the authoritative state
// into row, and publishes an update notification.
func (g *Gateway) Update(ctx context.Context, row Row, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	result := g.db.WithContext(ctx).Model(row).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("gateway: update %s: %w", row.TableName(), result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}
	if err := g.db.WithContext(ctx).Where("id = ?", id).Take(row).Error; err != nil {
		return fmt.Errorf("gateway: update %s: reload: %w", row.TableName(), err)
	}
	g.publish(realtime.ActionUpdate, row)
	return nil
}

// Delete removes the row with the given id and publishes a delete
// notification. The model argument is loaded with the removed row so the
// notification can carry its scope.
func (g *Gateway) Delete(ctx context.Context, row Row, id string) error {
	err := g.db.WithContext(ctx).Where("id = ?", id).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRowNotFound
	}
	if err != nil {
		return fmt.Errorf("gateway: delete from %s: %w", row.TableName(), err)
	}
	if err := g.db.WithContext(ctx).Where("id = ?", id).Delete(row).Error; err != nil {
		return fmt.Errorf("gateway: delete from %s: %w", row.TableName(), err)
	}
	g.publish(realtime.ActionDelete, row)
	return nil
}

func (g *Gateway) publish(action realtime.Action, row Row) {
	if g.hub == nil {
		return
	}
	change := realtime.Change{
		Table:     row.TableName(),
		Action:    action,
		RowID:     row.RowID(),
		Timestamp: g.clock().UTC(),
	}
	if scoped, ok := row.(ScopedRow); ok {
		change.ScopeColumn, change.ScopeValue = scoped.Scope()
	}
	g.hub.Publish(change)
	g.log.Debug("change published",
		zap.String("table", change.Table),
		zap.String("action", string(change.Action)),
		zap.String("row_id", change.RowID))
}
