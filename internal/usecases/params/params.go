// Package params normaliza os parâmetros de consulta das páginas (ordenação,
// paginação e janela de datas). A resolução é uma função pura e total: entrada
// malformada nunca gera erro, apenas cai nos valores padrão.
package params

import (
	"strconv"
	"time"

	"github.com/vfg2006/sales-manager-api/internal/domain"
)

const (
	// DashboardPageSize é o tamanho de página usado na listagem do painel
	DashboardPageSize = 7
	// ListPageSize é o tamanho de página usado nas listagens de CRUD
	ListPageSize = 15

	// DefaultRangeDays é a janela aplicada quando range está ausente ou inválido
	DefaultRangeDays = 14

	defaultOrderColumn = "created_at"

	// RangeCustom indica que a janela vem dos parâmetros start/end
	RangeCustom = "custom"
)

// sortColumns é a allow-list de colunas de ordenação; qualquer outro valor é
// ignorado
var sortColumns = map[string]bool{
	"created_at":    true,
	"number":        true,
	"total_price":   true,
	"status":        true,
	"customer_name": true,
	"seller_name":   true,
}

// RawParams são os parâmetros de consulta como chegam na query string
type RawParams struct {
	Sort  string
	Dir   string
	Page  string
	Range string
	Start string
	End   string
}

// ResolvedParams é a forma normalizada e preenchida com padrões dos
// parâmetros de página, consumida pelos agregadores e pela apresentação
type ResolvedParams struct {
	OrderColumn string        `json:"order_column"`
	Ascending   bool          `json:"ascending"`
	Page        int           `json:"page"`
	From        int           `json:"from"`
	To          int           `json:"to"`
	Window      domain.Window `json:"window"`
}

// Sort devolve a ordenação resolvida no formato esperado pelos repositórios
func (p ResolvedParams) Sort() domain.OrderSort {
	return domain.OrderSort{Column: p.OrderColumn, Ascending: p.Ascending}
}

// PageWindow devolve os offsets inclusivos de paginação
func (p ResolvedParams) PageWindow() domain.PageWindow {
	return domain.PageWindow{From: p.From, To: p.To}
}

// Resolve normaliza os parâmetros brutos de uma página.
//
// Regras de janela: start e end presentes valem verbatim, ignorando range;
// caso contrário range é interpretado como quantidade de dias terminando em
// now (inclusivo), com fallback para DefaultRangeDays quando não for um
// inteiro positivo.
//
// Páginas além da última não são grampeadas: o offset resultante produz uma
// página vazia com a contagem exata, de forma consistente.
func Resolve(raw RawParams, pageSize int, now time.Time) ResolvedParams {
	resolved := ResolvedParams{
		OrderColumn: defaultOrderColumn,
		// Sem ordenação explícita o padrão é mais recente primeiro
		Ascending: false,
	}

	if sortColumns[raw.Sort] {
		resolved.OrderColumn = raw.Sort
		resolved.Ascending = raw.Dir != "desc"
	}

	resolved.Page = parsePage(raw.Page)
	resolved.From = (resolved.Page - 1) * pageSize
	resolved.To = resolved.From + pageSize - 1

	resolved.Window = resolveWindow(raw, now)

	return resolved
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func resolveWindow(raw RawParams, now time.Time) domain.Window {
	// Datas explícitas têm precedência sobre o range, e valem verbatim
	if raw.Start != "" && raw.End != "" {
		return domain.Window{StartISO: raw.Start, EndISO: raw.End}
	}

	days := DefaultRangeDays
	if raw.Range != "" && raw.Range != RangeCustom {
		if parsed, err := strconv.Atoi(raw.Range); err == nil && parsed > 0 {
			days = parsed
		}
	}

	end := now
	start := end.AddDate(0, 0, -(days - 1))

	return domain.Window{
		StartISO: start.Format(time.DateOnly),
		EndISO:   end.Format(time.DateOnly),
	}
}
