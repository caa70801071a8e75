package ordering

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func activeProduct(id string, price int64) *domain.Product {
	return &domain.Product{
		ID:     id,
		Name:   "Produto " + id,
		Price:  decimal.NewFromInt(price),
		Active: true,
	}
}

func TestCreateOrder_TotalIgualSomaDosItens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	mockProductRepo := mocks.NewMockProductRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

	mockCustomerRepo.EXPECT().
		GetCustomerByID(gomock.Any(), "cust-1").
		Return(&domain.Customer{ID: "cust-1", Name: "Cliente Um"}, nil)

	mockProductRepo.EXPECT().
		GetProductByID(gomock.Any(), "prod-1").
		Return(activeProduct("prod-1", 100), nil)

	mockProductRepo.EXPECT().
		GetProductByID(gomock.Any(), "prod-2").
		Return(activeProduct("prod-2", 25), nil)

	mockOrderRepo.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			// 2x100 + 3x25 = 275, calculado no servidor
			assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(275)))
			assert.Equal(t, domain.StatusSubmitted, order.Status)
			assert.Equal(t, "Cliente Um", order.CustomerName)
			assert.Equal(t, "seller-1", order.SellerID)
			require.NotNil(t, order.Number)
			assert.NotEmpty(t, *order.Number)

			require.Len(t, order.Items, 2)
			assert.True(t, order.Items[0].LineTotal.Equal(decimal.NewFromInt(200)))
			assert.True(t, order.Items[1].LineTotal.Equal(decimal.NewFromInt(75)))

			return order, nil
		})

	order, err := service.CreateOrder(context.Background(), "seller-1", "Vendedor Um", &CreateOrderRequest{
		CustomerID: "cust-1",
		Items: []NewOrderItem{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestCreateOrder_Validacoes(t *testing.T) {
	tests := []struct {
		name        string
		req         *CreateOrderRequest
		setup       func(customerRepo *mocks.MockCustomerRepository, productRepo *mocks.MockProductRepository)
		expectedErr error
	}{
		{
			name: "pedido sem itens é rejeitado",
			req: &CreateOrderRequest{
				CustomerID: "cust-1",
				Items:      []NewOrderItem{},
			},
			setup:       func(_ *mocks.MockCustomerRepository, _ *mocks.MockProductRepository) {},
			expectedErr: ErrEmptyOrder,
		},
		{
			name: "cliente inexistente é rejeitado",
			req: &CreateOrderRequest{
				CustomerID: "cust-x",
				Items:      []NewOrderItem{{ProductID: "prod-1", Quantity: 1}},
			},
			setup: func(customerRepo *mocks.MockCustomerRepository, _ *mocks.MockProductRepository) {
				customerRepo.EXPECT().GetCustomerByID(gomock.Any(), "cust-x").Return(nil, nil)
			},
			expectedErr: ErrCustomerNotFound,
		},
		{
			name: "quantidade zero é rejeitada",
			req: &CreateOrderRequest{
				CustomerID: "cust-1",
				Items:      []NewOrderItem{{ProductID: "prod-1", Quantity: 0}},
			},
			setup: func(customerRepo *mocks.MockCustomerRepository, _ *mocks.MockProductRepository) {
				customerRepo.EXPECT().GetCustomerByID(gomock.Any(), "cust-1").
					Return(&domain.Customer{ID: "cust-1"}, nil)
			},
			expectedErr: ErrInvalidQuantity,
		},
		{
			name: "produto inativo é rejeitado",
			req: &CreateOrderRequest{
				CustomerID: "cust-1",
				Items:      []NewOrderItem{{ProductID: "prod-1", Quantity: 1}},
			},
			setup: func(customerRepo *mocks.MockCustomerRepository, productRepo *mocks.MockProductRepository) {
				customerRepo.EXPECT().GetCustomerByID(gomock.Any(), "cust-1").
					Return(&domain.Customer{ID: "cust-1"}, nil)
				inactive := activeProduct("prod-1", 100)
				inactive.Active = false
				productRepo.EXPECT().GetProductByID(gomock.Any(), "prod-1").Return(inactive, nil)
			},
			expectedErr: ErrProductInactive,
		},
		{
			name: "dimensão acima do máximo do produto é rejeitada",
			req: &CreateOrderRequest{
				CustomerID: "cust-1",
				Items: []NewOrderItem{
					{ProductID: "prod-1", Quantity: 1, LengthCM: float64Ptr(120)},
				},
			},
			setup: func(customerRepo *mocks.MockCustomerRepository, productRepo *mocks.MockProductRepository) {
				customerRepo.EXPECT().GetCustomerByID(gomock.Any(), "cust-1").
					Return(&domain.Customer{ID: "cust-1"}, nil)
				limited := activeProduct("prod-1", 100)
				limited.MaxLengthCM = float64Ptr(100)
				productRepo.EXPECT().GetProductByID(gomock.Any(), "prod-1").Return(limited, nil)
			},
			expectedErr: ErrDimensionExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
			mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
			mockProductRepo := mocks.NewMockProductRepository(ctrl)
			service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

			tt.setup(mockCustomerRepo, mockProductRepo)

			_, err := service.CreateOrder(context.Background(), "seller-1", "Vendedor Um", tt.req)
			assert.True(t, errors.Is(err, tt.expectedErr), "esperava %v, veio %v", tt.expectedErr, err)
		})
	}
}

func TestUpdateOrderStatus_TransicoesDeFabrica(t *testing.T) {
	tests := []struct {
		name       string
		current    domain.OrderStatus
		requested  domain.OrderStatus
		allowed    bool
	}{
		{name: "APPROVED avança para IN_PRODUCTION", current: domain.StatusApproved, requested: domain.StatusInProduction, allowed: true},
		{name: "IN_PRODUCTION avança para IN_INSPECTION", current: domain.StatusInProduction, requested: domain.StatusInInspection, allowed: true},
		{name: "IN_INSPECTION avança para FINISHED", current: domain.StatusInInspection, requested: domain.StatusFinished, allowed: true},
		{name: "APPROVED não pula para FINISHED", current: domain.StatusApproved, requested: domain.StatusFinished, allowed: false},
		{name: "IN_PRODUCTION não volta para APPROVED", current: domain.StatusInProduction, requested: domain.StatusApproved, allowed: false},
		{name: "fábrica não cancela pedido", current: domain.StatusApproved, requested: domain.StatusCanceled, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
			mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
			mockProductRepo := mocks.NewMockProductRepository(ctrl)
			service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

			mockOrderRepo.EXPECT().
				GetOrderByID(gomock.Any(), "order-1").
				Return(&domain.Order{ID: "order-1", Status: tt.current}, nil)

			if tt.allowed {
				mockOrderRepo.EXPECT().
					UpdateOrderStatus(gomock.Any(), "order-1", tt.requested).
					Return(nil)
			}

			err := service.UpdateOrderStatus(context.Background(), domain.RoleFactory, "order-1", tt.requested)

			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrForbiddenTransition))
			}
		})
	}
}

func TestUpdateOrderStatus_AdminLivre(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	mockProductRepo := mocks.NewMockProductRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

	mockOrderRepo.EXPECT().
		GetOrderByID(gomock.Any(), "order-1").
		Return(&domain.Order{ID: "order-1", Status: domain.StatusSubmitted}, nil)

	mockOrderRepo.EXPECT().
		UpdateOrderStatus(gomock.Any(), "order-1", domain.StatusCanceled).
		Return(nil)

	err := service.UpdateOrderStatus(context.Background(), domain.RoleAdmin, "order-1", domain.StatusCanceled)
	assert.NoError(t, err)
}

func TestUpdateOrder_ReconciliacaoDeItens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
	mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
	mockProductRepo := mocks.NewMockProductRepository(ctrl)
	service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

	existing := &domain.Order{
		ID:         "order-1",
		Status:     domain.StatusSubmitted,
		CustomerID: "cust-1",
		SellerID:   "seller-1",
		Items: []*domain.OrderItem{
			{ID: "item-1", ProductID: "prod-1", Quantity: 1},
			{ID: "item-2", ProductID: "prod-2", Quantity: 2},
		},
	}

	mockOrderRepo.EXPECT().
		GetOrderByID(gomock.Any(), "order-1").
		Return(existing, nil)

	mockProductRepo.EXPECT().
		GetProductByID(gomock.Any(), "prod-1").
		Return(activeProduct("prod-1", 100), nil)

	mockProductRepo.EXPECT().
		GetProductByID(gomock.Any(), "prod-3").
		Return(activeProduct("prod-3", 50), nil)

	mockOrderRepo.EXPECT().
		UpdateOrderWithItems(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *domain.Order, deleteItemIDs []string, updateItems, insertItems []*domain.OrderItem) error {
			// item-2 saiu da requisição: removido; item-1 atualizado; prod-3 inserido
			assert.Equal(t, []string{"item-2"}, deleteItemIDs)

			require.Len(t, updateItems, 1)
			assert.Equal(t, "item-1", updateItems[0].ID)
			assert.Equal(t, 3, updateItems[0].Quantity)

			require.Len(t, insertItems, 1)
			assert.Equal(t, "prod-3", insertItems[0].ProductID)

			// Total recalculado: 3x100 + 1x50 = 350
			assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(350)))
			return nil
		})

	mockOrderRepo.EXPECT().
		GetOrderByID(gomock.Any(), "order-1").
		Return(existing, nil)

	_, err := service.UpdateOrder(context.Background(), domain.RoleSeller, "seller-1", &UpdateOrderRequest{
		OrderID: "order-1",
		Items: []UpdateOrderItem{
			{ID: "item-1", ProductID: "prod-1", Quantity: 3},
			{ProductID: "prod-3", Quantity: 1},
		},
	})
	require.NoError(t, err)
}

func TestGetOrder_RecortePorPapel(t *testing.T) {
	tests := []struct {
		name        string
		role        domain.Role
		scope       string
		order       *domain.Order
		expectedErr error
	}{
		{
			name:  "SELLER acessa o próprio pedido",
			role:  domain.RoleSeller,
			scope: "seller-1",
			order: &domain.Order{ID: "order-1", SellerID: "seller-1", Status: domain.StatusSubmitted},
		},
		{
			name:        "SELLER não acessa pedido de outro vendedor",
			role:        domain.RoleSeller,
			scope:       "seller-2",
			order:       &domain.Order{ID: "order-1", SellerID: "seller-1", Status: domain.StatusSubmitted},
			expectedErr: ErrNotOrderOwner,
		},
		{
			name:  "FACTORY acessa pedido em produção",
			role:  domain.RoleFactory,
			order: &domain.Order{ID: "order-1", SellerID: "seller-1", Status: domain.StatusInProduction},
		},
		{
			name:        "FACTORY não acessa pedido submetido",
			role:        domain.RoleFactory,
			order:       &domain.Order{ID: "order-1", SellerID: "seller-1", Status: domain.StatusSubmitted},
			expectedErr: ErrOrderNotFound,
		},
		{
			name:        "pedido inexistente",
			role:        domain.RoleAdmin,
			order:       nil,
			expectedErr: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOrderRepo := mocks.NewMockOrderRepository(ctrl)
			mockCustomerRepo := mocks.NewMockCustomerRepository(ctrl)
			mockProductRepo := mocks.NewMockProductRepository(ctrl)
			service := NewService(mockOrderRepo, mockCustomerRepo, mockProductRepo)

			mockOrderRepo.EXPECT().
				GetOrderByID(gomock.Any(), "order-1").
				Return(tt.order, nil)

			order, err := service.GetOrder(context.Background(), tt.role, tt.scope, "order-1")

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "esperava %v, veio %v", tt.expectedErr, err)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
			}
		})
	}
}
