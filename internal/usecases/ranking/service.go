// Package ranking calcula os rankings de vendedores do painel administrativo.
// A visão é sempre global (sem recorte por vendedor): um SELLER enxerga o
// mesmo leaderboard que o ADMIN, por decisão de produto.
package ranking

import (
	"context"
	"sort"
	"sync"

	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

type RankingService interface {
	ComputeRankings(ctx context.Context, window domain.Window, viewer domain.Role) (*domain.SellerRankings, error)
}

type SellerRankingService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	cfg          *config.Config
}

func NewSellerRankingService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	cfg *config.Config,
) RankingService {
	return &SellerRankingService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		cfg:          cfg,
	}
}

// ComputeRankings monta as três listas independentes (pedidos por quantidade,
// pedidos por valor e clientes criados) para a janela informada. Os agregados
// chegam do banco em ordem alfabética de vendedor e a ordenação por métrica é
// estável, então empates ficam determinísticos (alfabéticos).
func (s *SellerRankingService) ComputeRankings(
	ctx context.Context,
	window domain.Window,
	viewer domain.Role,
) (*domain.SellerRankings, error) {
	start, end, err := window.Bounds()
	if err != nil {
		return nil, err
	}

	var (
		aggregates     []*domain.SellerAggregate
		customerCounts []*domain.SellerCount

		aggErr, custErr error
	)

	wg := sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		aggregates, aggErr = s.orderRepo.SellerOrderAggregates(ctx, start, end)
	}()

	go func() {
		defer wg.Done()
		customerCounts, custErr = s.customerRepo.CountCustomersBySeller(ctx, start, end)
	}()

	wg.Wait()

	if aggErr != nil {
		return nil, aggErr
	}
	if custErr != nil {
		return nil, custErr
	}

	showValues := s.cfg.Dashboard.ShowSellerRevenue || viewer == domain.RoleAdmin

	return &domain.SellerRankings{
		OrdersByCount:    s.ordersByCount(aggregates),
		OrdersByValue:    s.ordersByValue(aggregates, showValues),
		CustomersByCount: s.customersByCount(customerCounts),
	}, nil
}

func (s *SellerRankingService) topN() int {
	if s.cfg.Dashboard.RankingSize > 0 {
		return s.cfg.Dashboard.RankingSize
	}
	return 10
}

func (s *SellerRankingService) ordersByCount(aggregates []*domain.SellerAggregate) []domain.RankingItem {
	sorted := make([]*domain.SellerAggregate, len(aggregates))
	copy(sorted, aggregates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderCount > sorted[j].OrderCount
	})

	items := make([]domain.RankingItem, 0, len(sorted))
	for i, aggregate := range sorted {
		if i >= s.topN() {
			break
		}
		items = append(items, domain.RankingItem{
			Position: i + 1,
			Name:     aggregate.SellerName,
			Count:    aggregate.OrderCount,
		})
	}

	return items
}

func (s *SellerRankingService) ordersByValue(aggregates []*domain.SellerAggregate, showValues bool) []domain.RankingItem {
	sorted := make([]*domain.SellerAggregate, len(aggregates))
	copy(sorted, aggregates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalValue.GreaterThan(sorted[j].TotalValue)
	})

	items := make([]domain.RankingItem, 0, len(sorted))
	for i, aggregate := range sorted {
		if i >= s.topN() {
			break
		}

		item := domain.RankingItem{
			Position: i + 1,
			Name:     aggregate.SellerName,
		}

		// Valores suprimidos para não administradores quando a configuração
		// desabilita a visibilidade; a posição permanece
		if showValues {
			value := aggregate.TotalValue
			item.Value = &value
		}

		items = append(items, item)
	}

	return items
}

func (s *SellerRankingService) customersByCount(counts []*domain.SellerCount) []domain.RankingItem {
	sorted := make([]*domain.SellerCount, len(counts))
	copy(sorted, counts)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	items := make([]domain.RankingItem, 0, len(sorted))
	for i, count := range sorted {
		if i >= s.topN() {
			break
		}
		items = append(items, domain.RankingItem{
			Position: i + 1,
			Name:     count.SellerName,
			Count:    count.Count,
		})
	}

	return items
}
