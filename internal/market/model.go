package market

import "time"

// Listing statuses.
const (
	StatusActive = "active"
	StatusSold   = "sold"
)

// Listing is a marketplace entry for a part or car offered for sale.
type Listing struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	SellerID    string    `gorm:"column:seller_id;size:190;not null;index"`
	Title       string    `gorm:"column:title;size:190;not null"`
	Description string    `gorm:"column:description;type:text"`
	PriceCents  int64     `gorm:"column:price_cents;not null;default:0"`
	ImageURL    string    `gorm:"column:image_url;size:512"`
	Status      string    `gorm:"column:status;size:16;not null;default:active;index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index"`
}

func (Listing) TableName() string { return "listings" }

func (l Listing) RowID() string { return l.ID }

func (l Listing) Scope() (string, string) { return "seller_id", l.SellerID }

func (l *Listing) AssignServerFields(id string, now time.Time) {
	if l.ID == "" {
		l.ID = id
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
}
