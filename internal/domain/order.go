// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus representa o status de um pedido
type OrderStatus string

const (
	StatusSubmitted    OrderStatus = "SUBMITTED"
	StatusApproved     OrderStatus = "APPROVED"
	StatusWaiting      OrderStatus = "WAITING"
	StatusInProduction OrderStatus = "IN_PRODUCTION"
	StatusInInspection OrderStatus = "IN_INSPECTION"
	StatusFinished     OrderStatus = "FINISHED"
	StatusCanceled     OrderStatus = "CANCELED"
)

// Valid verifica se o status é um dos valores conhecidos
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusWaiting,
		StatusInProduction, StatusInInspection, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

type Order struct {
	ID           string          `json:"id"`
	Number       *string         `json:"number"`
	Status       OrderStatus     `json:"status"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	SellerID     string          `json:"seller_id"`
	SellerName   string          `json:"seller_name"`
	Items        []*OrderItem    `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"` // Quantity * UnitPrice
	LengthCM    *float64        `json:"length_cm"`
	WidthCM     *float64        `json:"width_cm"`
	HeightCM    *float64        `json:"height_cm"`
}

// OrderFilter define o recorte de pedidos visível em uma consulta.
// Start e End são limites UTC fechados derivados da janela resolvida.
type OrderFilter struct {
	Start    time.Time
	End      time.Time
	Status   *OrderStatus
	SellerID *string
}

// OrderSort define a coluna e direção de ordenação já validadas
type OrderSort struct {
	Column    string
	Ascending bool
}

// PageWindow define os offsets de paginação (inclusivos) de uma consulta
type PageWindow struct {
	From int
	To   int
}

// Limit retorna a quantidade de linhas da página
func (p PageWindow) Limit() int {
	return p.To - p.From + 1
}

// OrderTotals agrega os totais não paginados de um recorte de pedidos
type OrderTotals struct {
	TotalPrice          decimal.Decimal `json:"total_price"`
	TotalCount          int             `json:"total_count"`
	InProductionCount   int             `json:"in_production_count"`
	ReadyToProduceCount int             `json:"ready_to_produce_count"`
}

// SellerAggregate agrega pedidos de um vendedor dentro de uma janela
type SellerAggregate struct {
	SellerID   string          `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	OrderCount int             `json:"order_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// SellerCount é a contagem de clientes criados por um vendedor
type SellerCount struct {
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
	Count      int    `json:"count"`
}
