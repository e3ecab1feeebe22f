package garage

import "time"

// Car is a build: the unit of garage ownership and the parent scope for
// parts, maintenance, tasks, photos, and the build timeline.
type Car struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	UserID    string    `gorm:"column:user_id;size:190;not null;index"`
	Make      string    `gorm:"column:make;size:64;not null"`
	Model     string    `gorm:"column:model;size:64;not null"`
	Year      int       `gorm:"column:year;not null"`
	Trim      string    `gorm:"column:trim;size:64"`
	CoverURL  string    `gorm:"column:cover_url;size:512"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:false;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (Car) TableName() string { return "cars" }

func (c Car) RowID() string { return c.ID }

// Scope binds a build to its owner's garage list.
func (c Car) Scope() (string, string) { return "user_id", c.UserID }

func (c *Car) AssignServerFields(id string, now time.Time) {
	if c.ID == "" {
		c.ID = id
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// Part is an installed or planned part on one car.
type Part struct {
	ID         string    `gorm:"column:id;primaryKey;size:190;not null"`
	CarID      string    `gorm:"column:car_id;size:190;not null;index"`
	Name       string    `gorm:"column:name;size:190;not null"`
	Category   string    `gorm:"column:category;size:64"`
	Brand      string    `gorm:"column:brand;size:64"`
	PriceCents int64     `gorm:"column:price_cents;not null;default:0"`
	Installed  bool      `gorm:"column:installed;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (Part) TableName() string { return "car_parts" }

func (p Part) RowID() string { return p.ID }

func (p Part) Scope() (string, string) { return "car_id", p.CarID }

func (p *Part) AssignServerFields(id string, now time.Time) {
	if p.ID == "" {
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// MaintenanceLog records one service entry on a car.
type MaintenanceLog struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	CarID       string    `gorm:"column:car_id;size:190;not null;index"`
	Title       string    `gorm:"column:title;size:190;not null"`
	Notes       string    `gorm:"column:notes;type:text"`
	Odometer    int64     `gorm:"column:odometer;not null;default:0"`
	CostCents   int64     `gorm:"column:cost_cents;not null;default:0"`
	PerformedAt time.Time `gorm:"column:performed_at"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (MaintenanceLog) TableName() string { return "maintenance_logs" }

func (m MaintenanceLog) RowID() string { return m.ID }

func (m MaintenanceLog) Scope() (string, string) { return "car_id", m.CarID }

func (m *MaintenanceLog) AssignServerFields(id string, now time.Time) {
	if m.ID == "" {
		m.ID = id
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}

// Task is a to-do item on a build.
type Task struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	CarID     string    `gorm:"column:car_id;size:190;not null;index"`
	Title     string    `gorm:"column:title;size:190;not null"`
	Done      bool      `gorm:"column:done;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Task) TableName() string { return "car_tasks" }

func (t Task) RowID() string { return t.ID }

func (t Task) Scope() (string, string) { return "car_id", t.CarID }

func (t *Task) AssignServerFields(id string, now time.Time) {
	if t.ID == "" {
		t.ID = id
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

// Photo is one image in a car's gallery.
type Photo struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	CarID     string    `gorm:"column:car_id;size:190;not null;index"`
	URL       string    `gorm:"column:url;size:512;not null"`
	Caption   string    `gorm:"column:caption;size:320"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Photo) TableName() string { return "car_photos" }

func (p Photo) RowID() string { return p.ID }

func (p Photo) Scope() (string, string) { return "car_id", p.CarID }

func (p *Photo) AssignServerFields(id string, now time.Time) {
	if p.ID == "" {
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// TimelineEntry is a milestone on a build's public history.
type TimelineEntry struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	CarID       string    `gorm:"column:car_id;size:190;not null;index"`
	Title       string    `gorm:"column:title;size:190;not null"`
	Description string    `gorm:"column:description;type:text"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (TimelineEntry) TableName() string { return "car_timeline" }

func (e TimelineEntry) RowID() string { return e.ID }

func (e TimelineEntry) Scope() (string, string) { return "car_id", e.CarID }

func (e *TimelineEntry) AssignServerFields(id string, now time.Time) {
	if e.ID == "" {
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}
