package garage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"github.com/midniteauto/backend/internal/storage"
	"gorm.io/gorm"
)

type recordingObjectStore struct {
	failUpload error
	uploads    []string
}

func (s *recordingObjectStore) Upload(_ context.Context, bucket, path string, _ []byte, _ storage.UploadOptions) error {
	if s.failUpload != nil {
		return s.failUpload
	}
	s.uploads = append(s.uploads, bucket+"/"+path)
	return nil
}

func (s *recordingObjectStore) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

func newTestGateway(t *testing.T) (*gateway.Gateway, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:midnite_garage_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&Car{}, &Part{}, &MaintenanceLog{}, &Task{}, &Photo{}, &TimelineEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	gw, err := gateway.New(gateway.Config{Database: db, Hub: realtime.NewHub()})
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	return gw, db
}

func TestAddWithCoverAttachesCoverURL(t *testing.T) {
	gw, _ := newTestGateway(t)
	objects := &recordingObjectStore{}
	service := NewCarService(gw, objects, nil)
	ctx := context.Background()

	car := Car{UserID: "user-1", Make: "Toyota", Model: "Supra", Year: 1997}
	if err := service.AddWithCover(ctx, &car, []byte("jpeg"), "image/jpeg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects.uploads) != 1 {
		t.Fatalf("expected one upload, got %v", objects.uploads)
	}
	if car.CoverURL == "" {
		t.Fatalf("expected cover url on the returned car")
	}

	stored, err := service.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if stored.CoverURL != car.CoverURL {
		t.Fatalf("cover url not persisted: %q vs %q", stored.CoverURL, car.CoverURL)
	}
}

func TestAddWithCoverUploadFailureKeepsCar(t *testing.T) {
	gw, _ := newTestGateway(t)
	objects := &recordingObjectStore{failUpload: errors.New("bucket unreachable")}
	service := NewCarService(gw, objects, nil)
	ctx := context.Background()

	car := Car{UserID: "user-1", Make: "Toyota", Model: "Supra"}
	err := service.AddWithCover(ctx, &car, []byte("jpeg"), "image/jpeg")
	if !errors.Is(err, ErrCoverNotApplied) {
		t.Fatalf("expected ErrCoverNotApplied, got %v", err)
	}

	// The create is never rolled back; the build exists without a cover.
	stored, getErr := service.Get(ctx, car.ID)
	if getErr != nil {
		t.Fatalf("expected car to survive cover failure: %v", getErr)
	}
	if stored.CoverURL != "" {
		t.Fatalf("expected empty cover url, got %q", stored.CoverURL)
	}
}

func TestAddWithCoverWithoutImageSkipsUpload(t *testing.T) {
	gw, _ := newTestGateway(t)
	objects := &recordingObjectStore{}
	service := NewCarService(gw, objects, nil)

	car := Car{UserID: "user-1", Make: "Mazda", Model: "RX-7"}
	if err := service.AddWithCover(context.Background(), &car, nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects.uploads) != 0 {
		t.Fatalf("expected no uploads, got %v", objects.uploads)
	}
}

func TestPublicBuildsExcludesPrivateCars(t *testing.T) {
	gw, _ := newTestGateway(t)
	service := NewCarService(gw, nil, nil)
	ctx := context.Background()

	public := Car{UserID: "user-1", Make: "Honda", Model: "NSX", IsPublic: true}
	private := Car{UserID: "user-1", Make: "Honda", Model: "Civic"}
	if err := service.Add(ctx, &public); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := service.Add(ctx, &private); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}

	builds, err := service.PublicBuilds(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(builds) != 1 || builds[0].ID != public.ID {
		t.Fatalf("expected only the public build, got %+v", builds)
	}
}

func TestOpenTaskCountIgnoresDoneTasks(t *testing.T) {
	gw, _ := newTestGateway(t)
	tasks := NewTaskService(gw)
	ctx := context.Background()

	open := Task{CarID: "car-1", Title: "swap coilovers"}
	done := Task{CarID: "car-1", Title: "oil change", Done: true}
	elsewhere := Task{CarID: "car-2", Title: "alignment"}
	for _, task := range []*Task{&open, &done, &elsewhere} {
		if err := tasks.Add(ctx, task); err != nil {
			t.Fatalf("unexpected add error: %v", err)
		}
	}

	count, err := tasks.OpenCount(ctx, "car-1")
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 open task, got %d", count)
	}
}

func TestPhotoAddFromBytesUploadsBeforeRecording(t *testing.T) {
	gw, _ := newTestGateway(t)
	objects := &recordingObjectStore{}
	service := NewPhotoService(gw, objects)
	ctx := context.Background()

	photo := Photo{CarID: "car-1", Caption: "first start"}
	if err := service.AddFromBytes(ctx, &photo, []byte("jpeg"), "image/jpeg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if photo.URL == "" {
		t.Fatalf("expected recorded url")
	}
	if len(objects.uploads) != 1 {
		t.Fatalf("expected one upload, got %v", objects.uploads)
	}

	photos, err := service.List(ctx, "car-1")
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(photos) != 1 || photos[0].URL != photo.URL {
		t.Fatalf("unexpected photos %+v", photos)
	}
}

func TestPhotoAddFromBytesUploadFailureRecordsNothing(t *testing.T) {
	gw, _ := newTestGateway(t)
	objects := &recordingObjectStore{failUpload: errors.New("bucket unreachable")}
	service := NewPhotoService(gw, objects)
	ctx := context.Background()

	photo := Photo{CarID: "car-1"}
	if err := service.AddFromBytes(ctx, &photo, []byte("jpeg"), "image/jpeg"); err == nil {
		t.Fatalf("expected upload error")
	}
	photos, err := service.List(ctx, "car-1")
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected no rows after failed upload, got %+v", photos)
	}
}
