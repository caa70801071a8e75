// Package dashboarding calcula as métricas do painel para um papel e uma
// janela de datas. Tudo é recalculado a cada requisição; nada é memorizado ou
// persistido.
package dashboarding

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/log"
)

type Dashboarder interface {
	ComputeMetrics(ctx context.Context, role domain.Role, scopeID string, resolved params.ResolvedParams) (*domain.DashboardMetrics, error)
}

type Service struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

func NewService(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository) Dashboarder {
	return &Service{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// scopedFilter aplica o recorte de visibilidade do papel sobre a janela:
// FACTORY enxerga apenas pedidos aprovados, SELLER apenas os próprios, ADMIN
// tudo. O switch é exaustivo sobre o enum de papéis.
func scopedFilter(role domain.Role, scopeID string, window domain.Window) (domain.OrderFilter, error) {
	start, end, err := window.Bounds()
	if err != nil {
		return domain.OrderFilter{}, err
	}

	filter := domain.OrderFilter{Start: start, End: end}

	switch role {
	case domain.RoleAdmin:
		// Visibilidade total
	case domain.RoleSeller:
		sellerID := scopeID
		filter.SellerID = &sellerID
	case domain.RoleFactory:
		approved := domain.StatusApproved
		filter.Status = &approved
	}

	return filter, nil
}

// ComputeMetrics calcula listagem paginada, totais, contagem de clientes e a
// série de vendas por dia para o papel informado. As consultas independentes
// são disparadas em paralelo; a primeira falha invalida o painel inteiro (sem
// renderização parcial).
func (s *Service) ComputeMetrics(
	ctx context.Context,
	role domain.Role,
	scopeID string,
	resolved params.ResolvedParams,
) (*domain.DashboardMetrics, error) {
	filter, err := scopedFilter(role, scopeID, resolved.Window)
	if err != nil {
		return nil, err
	}

	var (
		orders     []*domain.Order
		totalCount int
		totals     *domain.OrderTotals
		customers  int
		salesByDay []domain.DailySales

		listErr, totalsErr, customersErr, salesErr error
	)

	wg := sync.WaitGroup{}
	wg.Add(3)

	go func() {
		defer wg.Done()
		orders, totalCount, listErr = s.orderRepo.ListOrders(ctx, filter, resolved.Sort(), resolved.PageWindow())
	}()

	go func() {
		defer wg.Done()
		totals, totalsErr = s.orderRepo.SumOrderTotals(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		customers, customersErr = s.countCustomers(ctx, role, filter)
	}()

	// Série de vendas por dia apenas para ADMIN e SELLER
	if role != domain.RoleFactory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			salesByDay, salesErr = s.salesByDay(ctx, filter, resolved.Window)
		}()
	}

	wg.Wait()

	for _, err := range []error{listErr, totalsErr, customersErr, salesErr} {
		if err != nil {
			log.ForContext(ctx).WithError(err).Error("dashboard: falha ao calcular métricas")
			return nil, err
		}
	}

	return &domain.DashboardMetrics{
		Orders:              orders,
		TotalCount:          totalCount,
		TotalOrdersPrice:    totals.TotalPrice,
		InProductionCount:   totals.InProductionCount,
		ReadyToProduceCount: totals.ReadyToProduceCount,
		CustomerCount:       customers,
		SalesByDay:          salesByDay,
	}, nil
}

// countCustomers segue a visibilidade do papel: ADMIN conta todos os clientes,
// SELLER conta clientes distintos dos próprios pedidos e FACTORY não enxerga
// clientes
func (s *Service) countCustomers(ctx context.Context, role domain.Role, filter domain.OrderFilter) (int, error) {
	switch role {
	case domain.RoleAdmin:
		return s.customerRepo.CountCustomers(ctx)
	case domain.RoleSeller:
		return s.orderRepo.CountDistinctCustomers(ctx, filter)
	case domain.RoleFactory:
		return 0, nil
	}

	return 0, nil
}

// salesByDay preenche a série com uma entrada por dia da janela, inclusive os
// extremos, com total zero nos dias sem pedido, em ordem ascendente
func (s *Service) salesByDay(ctx context.Context, filter domain.OrderFilter, window domain.Window) ([]domain.DailySales, error) {
	days, err := window.Days()
	if err != nil {
		return nil, err
	}

	sales, err := s.orderRepo.SalesByDay(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalsByDay := make(map[string]decimal.Decimal, len(sales))
	for _, entry := range sales {
		totalsByDay[entry.Day] = entry.Total
	}

	series := make([]domain.DailySales, 0, len(days))
	for _, day := range days {
		total, ok := totalsByDay[day]
		if !ok {
			total = decimal.Zero
		}
		series = append(series, domain.DailySales{Day: day, Total: total})
	}

	return series, nil
}
