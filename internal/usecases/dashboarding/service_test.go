package dashboarding

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"go.uber.org/mock/gomock"
)

func resolvedForWindow(start, end string) params.ResolvedParams {
	return params.ResolvedParams{
		OrderColumn: "created_at",
		Ascending:   false,
		Page:        1,
		From:        0,
		To:          params.DashboardPageSize - 1,
		Window:      domain.Window{StartISO: start, EndISO: end},
	}
}

func TestComputeMetrics_SerieDeVendasPorDia(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo)

	resolved := resolvedForWindow("2024-03-01", "2024-03-05")

	mockOrderRepo.EXPECT().
		ListOrders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*domain.Order{}, 0, nil)

	mockOrderRepo.EXPECT().
		SumOrderTotals(gomock.Any(), gomock.Any()).
		Return(&domain.OrderTotals{TotalPrice: decimal.NewFromInt(350)}, nil)

	mockCustomerRepo.EXPECT().
		CountCustomers(gomock.Any()).
		Return(12, nil)

	// Apenas dois dias da janela têm vendas
	mockOrderRepo.EXPECT().
		SalesByDay(gomock.Any(), gomock.Any()).
		Return([]domain.DailySales{
			{Day: "2024-03-02", Total: decimal.NewFromInt(200)},
			{Day: "2024-03-04", Total: decimal.NewFromInt(150)},
		}, nil)

	metrics, err := service.ComputeMetrics(context.Background(), domain.RoleAdmin, "", resolved)
	require.NoError(t, err)

	// A série cobre cada dia da janela, com zero nos dias sem pedido
	require.Len(t, metrics.SalesByDay, 5)
	assert.Equal(t, "2024-03-01", metrics.SalesByDay[0].Day)
	assert.True(t, metrics.SalesByDay[0].Total.IsZero())
	assert.True(t, metrics.SalesByDay[1].Total.Equal(decimal.NewFromInt(200)))
	assert.True(t, metrics.SalesByDay[2].Total.IsZero())
	assert.True(t, metrics.SalesByDay[3].Total.Equal(decimal.NewFromInt(150)))
	assert.True(t, metrics.SalesByDay[4].Total.IsZero())

	assert.Equal(t, 12, metrics.CustomerCount)
	assert.True(t, metrics.TotalOrdersPrice.Equal(decimal.NewFromInt(350)))
}

func TestComputeMetrics_RecortePorPapel(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		scope  string
		verify func(t *testing.T, filter domain.OrderFilter)
	}{
		{
			name:  "ADMIN enxerga tudo",
			role:  domain.RoleAdmin,
			scope: "",
			verify: func(t *testing.T, filter domain.OrderFilter) {
				assert.Nil(t, filter.SellerID)
				assert.Nil(t, filter.Status)
			},
		},
		{
			name:  "SELLER enxerga apenas os próprios pedidos",
			role:  domain.RoleSeller,
			scope: "seller-1",
			verify: func(t *testing.T, filter domain.OrderFilter) {
				require.NotNil(t, filter.SellerID)
				assert.Equal(t, "seller-1", *filter.SellerID)
				assert.Nil(t, filter.Status)
			},
		},
		{
			name:  "FACTORY enxerga apenas pedidos aprovados",
			role:  domain.RoleFactory,
			scope: "",
			verify: func(t *testing.T, filter domain.OrderFilter) {
				assert.Nil(t, filter.SellerID)
				require.NotNil(t, filter.Status)
				assert.Equal(t, domain.StatusApproved, *filter.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
			mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
			service := NewService(mockOrderRepo, mockCustomerRepo)

			resolved := resolvedForWindow("2024-03-01", "2024-03-05")

			var capturedFilter domain.OrderFilter

			mockOrderRepo.EXPECT().
				ListOrders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, filter domain.OrderFilter, _ domain.OrderSort, _ domain.PageWindow) ([]*domain.Order, int, error) {
					capturedFilter = filter
					return []*domain.Order{}, 0, nil
				})

			mockOrderRepo.EXPECT().
				SumOrderTotals(gomock.Any(), gomock.Any()).
				Return(&domain.OrderTotals{}, nil)

			switch tt.role {
			case domain.RoleAdmin:
				mockCustomerRepo.EXPECT().CountCustomers(gomock.Any()).Return(0, nil)
				mockOrderRepo.EXPECT().SalesByDay(gomock.Any(), gomock.Any()).Return(nil, nil)
			case domain.RoleSeller:
				mockOrderRepo.EXPECT().CountDistinctCustomers(gomock.Any(), gomock.Any()).Return(0, nil)
				mockOrderRepo.EXPECT().SalesByDay(gomock.Any(), gomock.Any()).Return(nil, nil)
			case domain.RoleFactory:
				// FACTORY não consulta clientes nem série de vendas
			}

			metrics, err := service.ComputeMetrics(context.Background(), tt.role, tt.scope, resolved)
			require.NoError(t, err)

			tt.verify(t, capturedFilter)

			if tt.role == domain.RoleFactory {
				assert.Equal(t, 0, metrics.CustomerCount)
				assert.Empty(t, metrics.SalesByDay)
			}
		})
	}
}

func TestComputeMetrics_ContagemExataComPaginaVazia(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo)

	// Página 5 de um conjunto com 10 pedidos: página vazia, contagem exata
	resolved := resolvedForWindow("2024-03-01", "2024-03-05")
	resolved.Page = 5
	resolved.From = 28
	resolved.To = 34

	mockOrderRepo.EXPECT().
		ListOrders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*domain.Order{}, 10, nil)

	mockOrderRepo.EXPECT().
		SumOrderTotals(gomock.Any(), gomock.Any()).
		Return(&domain.OrderTotals{TotalPrice: decimal.NewFromInt(900)}, nil)

	mockCustomerRepo.EXPECT().
		CountCustomers(gomock.Any()).
		Return(4, nil)

	mockOrderRepo.EXPECT().
		SalesByDay(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	metrics, err := service.ComputeMetrics(context.Background(), domain.RoleAdmin, "", resolved)
	require.NoError(t, err)

	assert.Empty(t, metrics.Orders)
	assert.Equal(t, 10, metrics.TotalCount)
	// Os totais agregados independem da página exibida
	assert.True(t, metrics.TotalOrdersPrice.Equal(decimal.NewFromInt(900)))
}

func TestComputeMetrics_FalhaParcialInvalidaOPainel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo)

	resolved := resolvedForWindow("2024-03-01", "2024-03-05")

	mockOrderRepo.EXPECT().
		ListOrders(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*domain.Order{}, 0, nil)

	mockOrderRepo.EXPECT().
		SumOrderTotals(gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	mockCustomerRepo.EXPECT().
		CountCustomers(gomock.Any()).
		Return(0, nil)

	mockOrderRepo.EXPECT().
		SalesByDay(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	metrics, err := service.ComputeMetrics(context.Background(), domain.RoleAdmin, "", resolved)
	assert.Error(t, err)
	assert.Nil(t, metrics)
}

func TestComputeMetrics_JanelaInvalida(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo)

	resolved := resolvedForWindow("não-é-data", "2024-03-05")

	metrics, err := service.ComputeMetrics(context.Background(), domain.RoleAdmin, "", resolved)
	assert.Error(t, err)
	assert.Nil(t, metrics)
}
