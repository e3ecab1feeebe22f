package garage

import (
	"context"
	"fmt"

	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/storage"
)

const photoBucket = "car-photos"

// PhotoService manages a car's gallery. Adding a photo uploads the image
// bytes first, then records the row pointing at the public URL.
type PhotoService struct {
	gw      *gateway.Gateway
	objects storage.ObjectStore
}

func NewPhotoService(gw *gateway.Gateway, objects storage.ObjectStore) *PhotoService {
	return &PhotoService{gw: gw, objects: objects}
}

// List returns a car's photos, newest first.
func (s *PhotoService) List(ctx context.Context, carID string) ([]Photo, error) {
	var photos []Photo
	err := s.gw.From("car_photos").Eq("car_id", carID).Order("created_at", true).Find(ctx, &photos)
	if err != nil {
		return nil, fmt.Errorf("garage: list photos: %w", err)
	}
	return photos, nil
}

func (s *PhotoService) Add(ctx context.Context, photo *Photo) error {
	if photo.CarID == "" || photo.URL == "" {
		return fmt.Errorf("garage: add photo: car_id and url are required")
	}
	if err := s.gw.Insert(ctx, photo); err != nil {
		return fmt.Errorf("garage: add photo: %w", err)
	}
	return nil
}

// AddFromBytes uploads the image and records the photo row in one call.
func (s *PhotoService) AddFromBytes(ctx context.Context, photo *Photo, data []byte, contentType string) error {
	if photo.CarID == "" {
		return fmt.Errorf("garage: add photo: car_id is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("garage: add photo: image data is required")
	}
	name, err := gateway.NewUUIDProvider().NewID()
	if err != nil {
		return fmt.Errorf("garage: add photo: %w", err)
	}
	path := photo.CarID + "/" + name
	err = s.objects.Upload(ctx, photoBucket, path, data, storage.UploadOptions{
		ContentType: contentType,
		Upsert:      false,
	})
	if err != nil {
		return fmt.Errorf("garage: add photo: %w", err)
	}
	photo.URL = s.objects.PublicURL(photoBucket, path)
	return s.Add(ctx, photo)
}

func (s *PhotoService) Update(ctx context.Context, id string, fields map[string]any) (Photo, error) {
	var photo Photo
	if err := s.gw.Update(ctx, &photo, id, fields); err != nil {
		return Photo{}, fmt.Errorf("garage: update photo: %w", err)
	}
	return photo, nil
}

func (s *PhotoService) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Photo{}, id); err != nil {
		return fmt.Errorf("garage: delete photo: %w", err)
	}
	return nil
}
