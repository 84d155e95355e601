// Package product provides the registered-product catalog: products are
// registered before verification so analysis and minting can resolve them by
// id.
package product

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateID  = errors.New("product id already registered")
	ErrMissingID    = errors.New("product id is required")
	ErrMissingName  = errors.New("product name is required")
	ErrInvalidPrice = errors.New("product price must be non-negative")
)

// Product is one registered catalog entry.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	SellerVerified bool      `json:"seller_verified"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// Validate checks the required fields before registration.
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Name == "" {
		return ErrMissingName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
