package models

import "time"

// Product event types published on the catalog exchange.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent describes a change to a wholesaler's inventory.
type ProductEvent struct {
	Type         string    `json:"type"`
	ProductID    uint      `json:"productId"`
	WholesalerID uint      `json:"wholesalerId"`
	ProductName  string    `json:"productName,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
