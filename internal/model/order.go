package model

import "time"

// PreOrder is a customer reservation against a product's stock. It is created
// only through the reservation engine and mutated exactly once, from active
// to cancelled.
type PreOrder struct {
	ID              string
	UserID          string
	ProductID       string
	Slot            DeliverySlot
	Quantity        int
	DeliveryAddress string
	CreatedAt       time.Time
	DeliveryDate    time.Time
	IsCancelled     bool
}

// ProductSales is one row of the top-products report.
type ProductSales struct {
	Product Product
	Total   int
}
