package models

import (
	"time"
)

type Beer struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name           string    `gorm:"not null"                       json:"name"`
	Type           string    `gorm:"not null;index"                 json:"type"`
	Description    string    `json:"description"`
	Price          float64   `gorm:"not null"                       json:"price"`
	AlcoholContent float64   `gorm:"column:alcohol_content"         json:"alcohol_content"`
	Volume         int       `json:"volume"`
	Stock          int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ImageURL       string    `gorm:"column:image_url"               json:"image_url"`
	IsPremium      bool      `gorm:"column:is_premium;default:false" json:"is_premium"`
	CreatedAt      time.Time `json:"created_at"`
}

type User struct {
	ID               uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	Email            string     `gorm:"unique;not null"            json:"email"`
	FullName         string     `gorm:"column:full_name"           json:"full_name"`
	PasswordHash     string     `gorm:"not null"                   json:"-"`
	Role             string     `gorm:"not null;default:customer"  json:"role"`
	IsPremium        bool       `gorm:"column:is_premium;default:false" json:"is_premium"`
	PremiumExpiresAt *time.Time `gorm:"column:premium_expires_at"  json:"premium_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PremiumActive reports whether the premium flag is still in force.
// Expiry is a read-time check, nothing reverts the stored flag.
func (u *User) PremiumActive(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(now) {
		return false
	}
	return true
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `json:"role"`
	JTI       string `gorm:"column:jti"          json:"jti"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type CartItem struct {
	ID       uint    `gorm:"primaryKey"                               json:"id"`
	UserID   uint    `gorm:"index:idx_cart_user_beer,unique;not null" json:"user_id"`
	BeerID   uint    `gorm:"index:idx_cart_user_beer,unique;not null" json:"beer_id"`
	Quantity uint    `gorm:"default:1;check:quantity > 0"             json:"quantity"`
	Price    float64 `gorm:"not null"                                 json:"price"`
}

type ShippingAddress struct {
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	City        string `json:"city"`
	ZipCode     string `json:"zipCode"`
}

type ContactInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID              uint            `gorm:"primaryKey"                json:"id"`
	UserID          uint            `gorm:"index;not null"            json:"user_id"`
	Status          string          `gorm:"not null;default:pending"  json:"status"`
	Total           float64         `gorm:"not null"                  json:"total"`
	ShippingAddress ShippingAddress `gorm:"serializer:json"           json:"shipping_address"`
	ContactInfo     ContactInfo     `gorm:"serializer:json"           json:"contact_info"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem captures the unit price at purchase time, price history is
// preserved per order even if the beer is repriced later.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey"     json:"id"`
	OrderID  uint    `gorm:"index;not null" json:"order_id"`
	BeerID   uint    `gorm:"not null"       json:"beer_id"`
	Quantity uint    `gorm:"not null"       json:"quantity"`
	Price    float64 `gorm:"not null"       json:"price"`
}

// RoleChange rows are append-only, never edited or deleted.
type RoleChange struct {
	ID           uint      `gorm:"primaryKey"     json:"id"`
	AdminID      uint      `gorm:"index;not null" json:"admin_id"`
	TargetUserID uint      `gorm:"index;not null" json:"target_user_id"`
	OldRole      string    `gorm:"not null"       json:"old_role"`
	NewRole      string    `gorm:"not null"       json:"new_role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"    json:"id"`
	UserID    *uint     `gorm:"index"         json:"user_id"`
	OrderID   *uint     `gorm:"index"         json:"order_id"`
	Type      string    `gorm:"not null"      json:"type"`
	Message   string    `gorm:"not null"      json:"message"`
	Metadata  string    `json:"metadata"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SubscriptionPlanMonthly = "monthly"
	SubscriptionPlanYearly  = "yearly"

	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

type Subscription struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Plan      string    `gorm:"not null"       json:"plan"`
	Status    string    `gorm:"not null"       json:"status"`
	ExpiresAt time.Time `gorm:"not null"       json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
