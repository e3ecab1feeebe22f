package garage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/storage"
	"go.uber.org/zap"
)

const coverBucket = "car-covers"

// ErrCoverNotApplied reports that the car was created but its cover image was
// not attached. The create is not rolled back; callers should treat this as
// success with a caveat.
var ErrCoverNotApplied = errors.New("garage: car created but cover not applied")

// CarService manages builds.
type CarService struct {
	gw      *gateway.Gateway
	objects storage.ObjectStore
	logger  *zap.Logger
}

// NewCarService constructs a CarService. The object store may be nil when
// cover uploads are not needed.
func NewCarService(gw *gateway.Gateway, objects storage.ObjectStore, logger *zap.Logger) *CarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CarService{gw: gw, objects: objects, logger: logger}
}

// List returns the user's cars, newest first.
func (s *CarService) List(ctx context.Context, userID string) ([]Car, error) {
	var cars []Car
	err := s.gw.From("cars").Eq("user_id", userID).Order("created_at", true).Find(ctx, &cars)
	if err != nil {
		return nil, fmt.Errorf("garage: list cars: %w", err)
	}
	return cars, nil
}

// PublicBuilds returns the most recent public builds, newest first.
func (s *CarService) PublicBuilds(ctx context.Context, limit int) ([]Car, error) {
	var cars []Car
	err := s.gw.From("cars").
		Eq("is_public", true).
		Order("created_at", true).
		Limit(limit).
		Find(ctx, &cars)
	if err != nil {
		return nil, fmt.Errorf("garage: list public builds: %w", err)
	}
	return cars, nil
}

// Get fetches one car by id.
func (s *CarService) Get(ctx context.Context, id string) (Car, error) {
	var car Car
	if err := s.gw.From("cars").Eq("id", id).Single(ctx, &car); err != nil {
		return Car{}, fmt.Errorf("garage: get car: %w", err)
	}
	return car, nil
}

// Add creates a car.
func (s *CarService) Add(ctx context.Context, car *Car) error {
	if car.UserID == "" || car.Make == "" || car.Model == "" {
		return fmt.Errorf("garage: add car: user_id, make, and model are required")
	}
	if err := s.gw.Insert(ctx, car); err != nil {
		return fmt.Errorf("garage: add car: %w", err)
	}
	return nil
}

// AddWithCover creates the car, uploads its cover image, then patches the
// cover URL onto the row. The create alone is sufficient for overall success:
// a failure in either later step returns the created car together with
// ErrCoverNotApplied and never rolls the create back.
func (s *CarService) AddWithCover(ctx context.Context, car *Car, cover []byte, contentType string) error {
	if err := s.Add(ctx, car); err != nil {
		return err
	}
	if len(cover) == 0 {
		return nil
	}

	path := car.ID + "/cover-" + strconv.FormatInt(car.CreatedAt.Unix(), 10)
	err := s.objects.Upload(ctx, coverBucket, path, cover, storage.UploadOptions{
		ContentType: contentType,
		Upsert:      true,
	})
	if err != nil {
		s.logger.Warn("cover upload failed", zap.String("car_id", car.ID), zap.Error(err))
		return ErrCoverNotApplied
	}

	url := s.objects.PublicURL(coverBucket, path)
	if err := s.gw.Update(ctx, car, car.ID, map[string]any{"cover_url": url}); err != nil {
		s.logger.Warn("cover patch failed", zap.String("car_id", car.ID), zap.Error(err))
		return ErrCoverNotApplied
	}
	return nil
}

// Update patches a car.
func (s *CarService) Update(ctx context.Context, id string, fields map[string]any) (Car, error) {
	var car Car
	if err := s.gw.Update(ctx, &car, id, fields); err != nil {
		return Car{}, fmt.Errorf("garage: update car: %w", err)
	}
	return car, nil
}

// Delete removes a car.
func (s *CarService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Car{}, id); err != nil {
		return fmt.Errorf("garage: delete car: %w", err)
	}
	return nil
}
