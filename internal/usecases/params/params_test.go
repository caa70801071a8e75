package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

func TestResolve_Janela(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		raw           RawParams
		expectedStart string
		expectedEnd   string
	}{
		{
			name:          "range=7 produz janela de 7 dias terminando hoje",
			raw:           RawParams{Range: "7"},
			expectedStart: "2024-03-14",
			expectedEnd:   "2024-03-20",
		},
		{
			name:          "start e end explícitos valem verbatim e ignoram range",
			raw:           RawParams{Range: "7", Start: "2024-01-01", End: "2024-01-31"},
			expectedStart: "2024-01-01",
			expectedEnd:   "2024-01-31",
		},
		{
			name:          "range inválido cai no padrão de 14 dias",
			raw:           RawParams{Range: "abc"},
			expectedStart: "2024-03-07",
			expectedEnd:   "2024-03-20",
		},
		{
			name:          "range negativo cai no padrão de 14 dias",
			raw:           RawParams{Range: "-3"},
			expectedStart: "2024-03-07",
			expectedEnd:   "2024-03-20",
		},
		{
			name:          "range ausente cai no padrão de 14 dias",
			raw:           RawParams{},
			expectedStart: "2024-03-07",
			expectedEnd:   "2024-03-20",
		},
		{
			name:          "apenas start sem end não forma janela custom",
			raw:           RawParams{Start: "2024-01-01"},
			expectedStart: "2024-03-07",
			expectedEnd:   "2024-03-20",
		},
		{
			name:          "range=custom sem datas cai no padrão",
			raw:           RawParams{Range: RangeCustom},
			expectedStart: "2024-03-07",
			expectedEnd:   "2024-03-20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(tt.raw, DashboardPageSize, now)

			assert.Equal(t, tt.expectedStart, resolved.Window.StartISO)
			assert.Equal(t, tt.expectedEnd, resolved.Window.EndISO)
		})
	}
}

func TestResolve_Ordenacao(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		raw            RawParams
		expectedColumn string
		expectedAsc    bool
	}{
		{
			name:           "sem ordenação explícita usa created_at descendente",
			raw:            RawParams{},
			expectedColumn: "created_at",
			expectedAsc:    false,
		},
		{
			name:           "coluna válida sem direção usa ascendente",
			raw:            RawParams{Sort: "total_price"},
			expectedColumn: "total_price",
			expectedAsc:    true,
		},
		{
			name:           "coluna válida com dir=desc respeita a direção",
			raw:            RawParams{Sort: "customer_name", Dir: "desc"},
			expectedColumn: "customer_name",
			expectedAsc:    false,
		},
		{
			name:           "coluna fora da allow-list cai no padrão",
			raw:            RawParams{Sort: "senha; DROP TABLE orders"},
			expectedColumn: "created_at",
			expectedAsc:    false,
		},
		{
			name:           "direção desconhecida vale como ascendente",
			raw:            RawParams{Sort: "status", Dir: "sideways"},
			expectedColumn: "status",
			expectedAsc:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(tt.raw, DashboardPageSize, now)

			assert.Equal(t, tt.expectedColumn, resolved.OrderColumn)
			assert.Equal(t, tt.expectedAsc, resolved.Ascending)
			assert.Equal(t, domain.OrderSort{Column: tt.expectedColumn, Ascending: tt.expectedAsc}, resolved.Sort())
		})
	}
}

func TestResolve_Paginacao(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		rawPage      string
		pageSize     int
		expectedPage int
		expectedFrom int
		expectedTo   int
	}{
		{
			name:         "página ausente vale 1",
			rawPage:      "",
			pageSize:     DashboardPageSize,
			expectedPage: 1,
			expectedFrom: 0,
			expectedTo:   6,
		},
		{
			name:         "página 3 com tamanho 7",
			rawPage:      "3",
			pageSize:     DashboardPageSize,
			expectedPage: 3,
			expectedFrom: 14,
			expectedTo:   20,
		},
		{
			name:         "página 2 com tamanho 15",
			rawPage:      "2",
			pageSize:     ListPageSize,
			expectedPage: 2,
			expectedFrom: 15,
			expectedTo:   29,
		},
		{
			name:         "página zero vale 1",
			rawPage:      "0",
			pageSize:     DashboardPageSize,
			expectedPage: 1,
			expectedFrom: 0,
			expectedTo:   6,
		},
		{
			name:         "página negativa vale 1",
			rawPage:      "-5",
			pageSize:     DashboardPageSize,
			expectedPage: 1,
			expectedFrom: 0,
			expectedTo:   6,
		},
		{
			name:         "página não numérica vale 1",
			rawPage:      "xyz",
			pageSize:     DashboardPageSize,
			expectedPage: 1,
			expectedFrom: 0,
			expectedTo:   6,
		},
		{
			// Páginas além da última não são grampeadas: o offset fica além do
			// conjunto e a página volta vazia, com a contagem exata
			name:         "página além da última mantém o offset",
			rawPage:      "999",
			pageSize:     DashboardPageSize,
			expectedPage: 999,
			expectedFrom: 6986,
			expectedTo:   6992,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Resolve(RawParams{Page: tt.rawPage}, tt.pageSize, now)

			assert.Equal(t, tt.expectedPage, resolved.Page)
			assert.Equal(t, tt.expectedFrom, resolved.From)
			assert.Equal(t, tt.expectedTo, resolved.To)
			assert.Equal(t, tt.pageSize, resolved.PageWindow().Limit())
		})
	}
}
