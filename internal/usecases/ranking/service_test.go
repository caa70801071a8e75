package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func testConfig(rankingSize int, showRevenue bool) *config.Config {
	return &config.Config{
		Dashboard: config.Dashboard{
			RankingSize:       rankingSize,
			ShowSellerRevenue: showRevenue,
		},
	}
}

// Agregados como o banco devolve: ordem alfabética de nome de vendedor
func alphabeticalAggregates() []*domain.SellerAggregate {
	return []*domain.SellerAggregate{
		{SellerID: "s-a", SellerName: "Ana", OrderCount: 3, TotalValue: decimal.NewFromInt(300)},
		{SellerID: "s-b", SellerName: "Bruno", OrderCount: 5, TotalValue: decimal.NewFromInt(900)},
		{SellerID: "s-c", SellerName: "Carla", OrderCount: 5, TotalValue: decimal.NewFromInt(500)},
	}
}

func TestComputeRankings_DesempateDeterministico(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewSellerRankingService(mockOrderRepo, mockCustomerRepo, testConfig(10, true))

	window := domain.Window{StartISO: "2024-03-01", EndISO: "2024-03-14"}

	mockOrderRepo.EXPECT().
		SellerOrderAggregates(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(alphabeticalAggregates(), nil)

	mockCustomerRepo.EXPECT().
		CountCustomersBySeller(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*domain.SellerCount{
			{SellerID: "s-a", SellerName: "Ana", Count: 2},
			{SellerID: "s-b", SellerName: "Bruno", Count: 2},
			{SellerID: "s-c", SellerName: "Carla", Count: 7},
		}, nil)

	rankings, err := service.ComputeRankings(context.Background(), window, domain.RoleAdmin)
	require.NoError(t, err)

	// Bruno e Carla empatam com 5 pedidos; a ordenação estável sobre a lista
	// alfabética deixa Bruno antes de Carla
	require.Len(t, rankings.OrdersByCount, 3)
	assert.Equal(t, 1, rankings.OrdersByCount[0].Position)
	assert.Equal(t, "Bruno", rankings.OrdersByCount[0].Name)
	assert.Equal(t, 5, rankings.OrdersByCount[0].Count)
	assert.Equal(t, 2, rankings.OrdersByCount[1].Position)
	assert.Equal(t, "Carla", rankings.OrdersByCount[1].Name)
	assert.Equal(t, 3, rankings.OrdersByCount[2].Position)
	assert.Equal(t, "Ana", rankings.OrdersByCount[2].Name)

	// Por valor a ordem é independente: Bruno (900), Carla (500), Ana (300)
	require.Len(t, rankings.OrdersByValue, 3)
	assert.Equal(t, "Bruno", rankings.OrdersByValue[0].Name)
	assert.Equal(t, "Carla", rankings.OrdersByValue[1].Name)
	assert.Equal(t, "Ana", rankings.OrdersByValue[2].Name)

	// Clientes: Carla (7), depois Ana e Bruno empatados em 2, alfabético
	require.Len(t, rankings.CustomersByCount, 3)
	assert.Equal(t, "Carla", rankings.CustomersByCount[0].Name)
	assert.Equal(t, "Ana", rankings.CustomersByCount[1].Name)
	assert.Equal(t, "Bruno", rankings.CustomersByCount[2].Name)
}

func TestComputeRankings_VisibilidadeDeValores(t *testing.T) {
	tests := []struct {
		name        string
		viewer      domain.Role
		showRevenue bool
		wantValues  bool
	}{
		{
			name:        "ADMIN sempre enxerga valores",
			viewer:      domain.RoleAdmin,
			showRevenue: false,
			wantValues:  true,
		},
		{
			name:        "SELLER sem permissão não enxerga valores",
			viewer:      domain.RoleSeller,
			showRevenue: false,
			wantValues:  false,
		},
		{
			name:        "SELLER com permissão enxerga valores",
			viewer:      domain.RoleSeller,
			showRevenue: true,
			wantValues:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
			mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
			service := NewSellerRankingService(mockOrderRepo, mockCustomerRepo, testConfig(10, tt.showRevenue))

			window := domain.Window{StartISO: "2024-03-01", EndISO: "2024-03-14"}

			mockOrderRepo.EXPECT().
				SellerOrderAggregates(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(alphabeticalAggregates(), nil)

			mockCustomerRepo.EXPECT().
				CountCustomersBySeller(gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]*domain.SellerCount{}, nil)

			rankings, err := service.ComputeRankings(context.Background(), window, tt.viewer)
			require.NoError(t, err)

			require.Len(t, rankings.OrdersByValue, 3)
			for _, item := range rankings.OrdersByValue {
				if tt.wantValues {
					assert.NotNil(t, item.Value)
				} else {
					// Posição e nome permanecem; apenas o valor é suprimido
					assert.Nil(t, item.Value)
					assert.NotEmpty(t, item.Name)
					assert.Positive(t, item.Position)
				}
			}
		})
	}
}

func TestComputeRankings_TopN(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewSellerRankingService(mockOrderRepo, mockCustomerRepo, testConfig(2, true))

	window := domain.Window{StartISO: "2024-03-01", EndISO: "2024-03-14"}

	mockOrderRepo.EXPECT().
		SellerOrderAggregates(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(alphabeticalAggregates(), nil)

	mockCustomerRepo.EXPECT().
		CountCustomersBySeller(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*domain.SellerCount{}, nil)

	rankings, err := service.ComputeRankings(context.Background(), window, domain.RoleAdmin)
	require.NoError(t, err)

	assert.Len(t, rankings.OrdersByCount, 2)
	assert.Len(t, rankings.OrdersByValue, 2)
}

func TestComputeRankings_JanelaConvertidaParaLimites(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewSellerRankingService(mockOrderRepo, mockCustomerRepo, testConfig(10, true))

	window := domain.Window{StartISO: "2024-03-01", EndISO: "2024-03-05"}
	expectedStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2024, 3, 5, 23, 59, 59, 999000000, time.UTC)

	mockOrderRepo.EXPECT().
		SellerOrderAggregates(gomock.Any(), expectedStart, expectedEnd).
		Return([]*domain.SellerAggregate{}, nil)

	mockCustomerRepo.EXPECT().
		CountCustomersBySeller(gomock.Any(), expectedStart, expectedEnd).
		Return([]*domain.SellerCount{}, nil)

	_, err := service.ComputeRankings(context.Background(), window, domain.RoleAdmin)
	require.NoError(t, err)
}
