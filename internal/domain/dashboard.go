package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Window é a janela de datas inclusiva [StartISO, EndISO] sobre a qual as
// métricas são calculadas, no formato YYYY-MM-DD
type Window struct {
	StartISO string `json:"start"`
	EndISO   string `json:"end"`
}

// Bounds converte a janela em limites de timestamp ancorados em UTC:
// [início 00:00:00.000, fim 23:59:59.999], independente do fuso do servidor
func (w Window) Bounds() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, w.StartISO, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data inicial inválida %q: %w", w.StartISO, err)
	}

	end, err := time.ParseInLocation(time.DateOnly, w.EndISO, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data final inválida %q: %w", w.EndISO, err)
	}

	return start, end.Add(24*time.Hour - time.Millisecond), nil
}

// Days enumera cada dia da janela em ordem ascendente, incluindo os dois
// extremos
func (w Window) Days() ([]string, error) {
	start, end, err := w.Bounds()
	if err != nil {
		return nil, err
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(time.DateOnly))
	}

	return days, nil
}

// DailySales é o total vendido em um dia (bucket de dia UTC)
type DailySales struct {
	Day   string          `json:"day"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// DashboardMetrics agrega tudo que o painel exibe para um papel e uma janela.
// Calculado por requisição, nunca persistido.
type DashboardMetrics struct {
	Orders              []*Order        `json:"orders"`
	TotalCount          int             `json:"total_count"`
	TotalOrdersPrice    decimal.Decimal `json:"total_orders_price"`
	InProductionCount   int             `json:"in_production_count"`
	ReadyToProduceCount int             `json:"ready_to_produce_count"`
	CustomerCount       int             `json:"customer_count"`
	SalesByDay          []DailySales    `json:"sales_by_day,omitempty"`
}

// RankingItem é uma linha de um dos rankings de vendedores.
// Value é nulo quando a visibilidade de valores está suprimida para o
// solicitante.
type RankingItem struct {
	Position int              `json:"position"`
	Name     string           `json:"name"`
	Count    int              `json:"count,omitempty"`
	Value    *decimal.Decimal `json:"value,omitempty"`
}

// SellerRankings são as três listas independentes do painel administrativo
type SellerRankings struct {
	OrdersByCount    []RankingItem `json:"orders_by_count"`
	OrdersByValue    []RankingItem `json:"orders_by_value"`
	CustomersByCount []RankingItem `json:"customers_by_count"`
}
