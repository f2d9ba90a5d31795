package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Client is a CRM customer record. The assistant only creates and looks up
// clients; it never mutates them after creation.
type Client struct {
	bun.BaseModel `bun:"table:clients"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email" json:"email,omitempty"`
	Phone     string    `bun:"phone" json:"phone,omitempty"`
	Country   string    `bun:"country" json:"country,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// InvoiceItem is one line of an invoice. Total is price x quantity,
// computed before the invoice is written.
type InvoiceItem struct {
	ItemName    string  `json:"itemName"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// Invoice mirrors the ERP invoice shape: numbered per year, referencing a
// client, with a computed document total.
type Invoice struct {
	bun.BaseModel `bun:"table:invoices"`

	ID          string        `bun:"id,pk" json:"id"`
	Number      int           `bun:"number,notnull" json:"number"`
	Year        int           `bun:"year,notnull" json:"year"`
	ClientID    string        `bun:"client_id,notnull" json:"client_id"`
	Date        time.Time     `bun:"date,notnull" json:"date"`
	ExpiredDate time.Time     `bun:"expired_date,notnull" json:"expiredDate"`
	Items       []InvoiceItem `bun:"items,type:jsonb" json:"items"`
	Total       float64       `bun:"total,notnull" json:"total"`
	Status      string        `bun:"status,notnull,default:'draft'" json:"status"`
	Notes       string        `bun:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,notnull" json:"created_at"`
}

const (
	InvoiceStatusDraft = "draft"
)
