package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	MaxLengthCM *float64        `json:"max_length_cm"`
	MaxWidthCM  *float64        `json:"max_width_cm"`
	MaxHeightCM *float64        `json:"max_height_cm"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type UpdateProductRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
	MaxLengthCM *float64         `json:"max_length_cm"`
	MaxWidthCM  *float64         `json:"max_width_cm"`
	MaxHeightCM *float64         `json:"max_height_cm"`
}
