package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name         string    `gorm:"not null"                    json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	Role         string    `gorm:"not null;default:user"       json:"role"`
	RefreshToken string    `gorm:"default:null"                json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Collection struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null"                 json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ImageKey    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string         `gorm:"not null"                 json:"title"`
	SKU          string         `json:"sku"`
	Description  string         `gorm:"not null"                 json:"description"`
	Price        float64        `gorm:"not null"                 json:"price"`
	Stock        uint           `gorm:"not null;default:0"       json:"stock"`
	DeliveryTime string         `gorm:"default:'1 Week'"         json:"delivery_time"`
	Featured     bool           `gorm:"default:false"            json:"featured"`
	CollectionID uint           `gorm:"index;not null"           json:"collection_id"`
	Images       []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	URL       string `gorm:"not null"                 json:"url"`
	Key       string `gorm:"not null"                 json:"-"`
}

// Cart is owned 1:1 by a user. TotalPrice is recomputed from the items
// after every mutation, never patched incrementally.
type Cart struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID     uint       `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items      []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice float64    `gorm:"not null;default:0"          json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem keeps the unit price snapshotted at the moment the product was
// first added. Merging more quantity in does not refresh the snapshot.
type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"                json:"id"`
	CartID    uint    `gorm:"index:idx_cart_product,unique;not null"  json:"-"`
	ProductID uint    `gorm:"index:idx_cart_product,unique;not null"  json:"product_id"`
	Quantity  uint    `gorm:"not null;check:quantity > 0"             json:"quantity"`
	Price     float64 `gorm:"not null"                                json:"price"`
}

type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null"           json:"user_id"`
	TotalPrice float64   `gorm:"not null"                 json:"total_price"`
	Status     string    `gorm:"not null;default:new"     json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
