// Package ordering implementa o ciclo de vida de pedidos: listagem com o
// mesmo recorte de papel do painel, criação com total calculado no servidor e
// atualização com reconciliação transacional de itens.
package ordering

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

type NewOrderItem struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	LengthCM  *float64 `json:"length_cm"`
	WidthCM   *float64 `json:"width_cm"`
	HeightCM  *float64 `json:"height_cm"`
}

type CreateOrderRequest struct {
	CustomerID string         `json:"customer_id"`
	Items      []NewOrderItem `json:"items"`
}

type UpdateOrderItem struct {
	// ID vazio indica item novo; itens existentes ausentes da lista são
	// removidos
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	LengthCM  *float64 `json:"length_cm"`
	WidthCM   *float64 `json:"width_cm"`
	HeightCM  *float64 `json:"height_cm"`
}

type UpdateOrderRequest struct {
	OrderID    string            `json:"order_id"`
	CustomerID *string           `json:"customer_id"`
	Items      []UpdateOrderItem `json:"items"`
}

type OrderListResponse struct {
	Orders     []*domain.Order `json:"orders"`
	TotalCount int             `json:"total_count"`
}

type OrderService interface {
	ListOrders(ctx context.Context, role domain.Role, scopeID string, resolved params.ResolvedParams) (*OrderListResponse, error)
	GetOrder(ctx context.Context, role domain.Role, scopeID, orderID string) (*domain.Order, error)
	CreateOrder(ctx context.Context, sellerID, sellerName string, req *CreateOrderRequest) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, role domain.Role, orderID string, status domain.OrderStatus) error
	UpdateOrder(ctx context.Context, role domain.Role, scopeID string, req *UpdateOrderRequest) (*domain.Order, error)
}

type Service struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
}

func NewService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) OrderService {
	return &Service{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// factoryTransitions são as únicas mudanças de status permitidas ao papel
// FACTORY: o avanço linear da produção
var factoryTransitions = map[domain.OrderStatus]domain.OrderStatus{
	domain.StatusApproved:     domain.StatusInProduction,
	domain.StatusInProduction: domain.StatusInInspection,
	domain.StatusInInspection: domain.StatusFinished,
}

func (s *Service) ListOrders(
	ctx context.Context,
	role domain.Role,
	scopeID string,
	resolved params.ResolvedParams,
) (*OrderListResponse, error) {
	start, end, err := resolved.Window.Bounds()
	if err != nil {
		return nil, err
	}

	filter := domain.OrderFilter{Start: start, End: end}

	switch role {
	case domain.RoleAdmin:
		// Sem restrição
	case domain.RoleSeller:
		sellerID := scopeID
		filter.SellerID = &sellerID
	case domain.RoleFactory:
		approved := domain.StatusApproved
		filter.Status = &approved
	}

	orders, totalCount, err := s.orderRepo.ListOrders(ctx, filter, resolved.Sort(), resolved.PageWindow())
	if err != nil {
		return nil, err
	}

	return &OrderListResponse{
		Orders:     orders,
		TotalCount: totalCount,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, role domain.Role, scopeID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, NewOrderErrorWithID(ErrOrderNotFound, apiErrors.ErrOrderNotFound, orderID, "")
	}

	switch role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		if order.SellerID != scopeID {
			return nil, NewOrderErrorWithID(ErrNotOrderOwner, apiErrors.ErrInsufficientPrivilege, orderID, "")
		}
	case domain.RoleFactory:
		if order.Status != domain.StatusApproved &&
			order.Status != domain.StatusInProduction &&
			order.Status != domain.StatusInInspection {
			return nil, NewOrderErrorWithID(ErrOrderNotFound, apiErrors.ErrOrderNotFound, orderID, "")
		}
	}

	return order, nil
}

// CreateOrder monta o pedido com snapshot de nomes, itens com line_total
// calculado no servidor e total igual à soma dos itens (invariante garantida
// aqui, no caminho de escrita)
func (s *Service) CreateOrder(
	ctx context.Context,
	sellerID, sellerName string,
	req *CreateOrderRequest,
) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, NewOrderError(ErrEmptyOrder, apiErrors.ErrMissingRequiredData, "")
	}

	customer, err := s.customerRepo.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, NewOrderError(ErrCustomerNotFound, apiErrors.ErrCustomerNotFound, req.CustomerID)
	}

	items, total, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	number, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, NewOrderError(err, apiErrors.ErrInternalServer, "erro ao gerar número do pedido")
	}

	order := &domain.Order{
		Number:       &number,
		Status:       domain.StatusSubmitted,
		TotalPrice:   total,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		SellerID:     sellerID,
		SellerName:   sellerName,
		Items:        items,
	}

	return s.orderRepo.CreateOrder(ctx, order)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, role domain.Role, orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return NewOrderError(ErrInvalidStatus, apiErrors.ErrInvalidFormat, string(status))
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return NewOrderErrorWithID(ErrOrderNotFound, apiErrors.ErrOrderNotFound, orderID, "")
	}

	// FACTORY só avança a linha de produção; demais transições são de
	// ADMIN/SELLER
	if role == domain.RoleFactory {
		if next, ok := factoryTransitions[order.Status]; !ok || next != status {
			return NewOrderErrorWithID(ErrForbiddenTransition, apiErrors.ErrInvalidStatusTransition, orderID,
				string(order.Status)+" -> "+string(status))
		}
	}

	return s.orderRepo.UpdateOrderStatus(ctx, orderID, status)
}

// UpdateOrder reconcilia os itens do pedido: itens ausentes da requisição são
// removidos, itens com ID são atualizados e itens sem ID são inseridos. Os
// três passos e a atualização do total rodam em uma única transação.
func (s *Service) UpdateOrder(
	ctx context.Context,
	role domain.Role,
	scopeID string,
	req *UpdateOrderRequest,
) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, role, scopeID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if role == domain.RoleFactory {
		return nil, NewOrderErrorWithID(ErrForbiddenTransition, apiErrors.ErrInsufficientPrivilege, req.OrderID,
			"papel FACTORY não edita pedidos")
	}

	if len(req.Items) == 0 {
		return nil, NewOrderError(ErrEmptyOrder, apiErrors.ErrMissingRequiredData, "")
	}

	if req.CustomerID != nil && *req.CustomerID != order.CustomerID {
		customer, err := s.customerRepo.GetCustomerByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, NewOrderError(ErrCustomerNotFound, apiErrors.ErrCustomerNotFound, *req.CustomerID)
		}
		order.CustomerID = customer.ID
		order.CustomerName = customer.Name
	}

	keep := make(map[string]bool, len(req.Items))
	var updateItems, insertItems []*domain.OrderItem
	total := decimal.Zero

	for _, reqItem := range req.Items {
		item, err := s.buildItem(ctx, NewOrderItem{
			ProductID: reqItem.ProductID,
			Quantity:  reqItem.Quantity,
			LengthCM:  reqItem.LengthCM,
			WidthCM:   reqItem.WidthCM,
			HeightCM:  reqItem.HeightCM,
		})
		if err != nil {
			return nil, err
		}

		total = total.Add(item.LineTotal)

		if reqItem.ID != "" {
			item.ID = reqItem.ID
			keep[reqItem.ID] = true
			updateItems = append(updateItems, item)
			continue
		}
		insertItems = append(insertItems, item)
	}

	var deleteItemIDs []string
	for _, existing := range order.Items {
		if !keep[existing.ID] {
			deleteItemIDs = append(deleteItemIDs, existing.ID)
		}
	}

	order.TotalPrice = total

	if err := s.orderRepo.UpdateOrderWithItems(ctx, order, deleteItemIDs, updateItems, insertItems); err != nil {
		return nil, err
	}

	return s.orderRepo.GetOrderByID(ctx, order.ID)
}

func (s *Service) buildItems(ctx context.Context, reqItems []NewOrderItem) ([]*domain.OrderItem, decimal.Decimal, error) {
	items := make([]*domain.OrderItem, 0, len(reqItems))
	total := decimal.Zero

	for _, reqItem := range reqItems {
		item, err := s.buildItem(ctx, reqItem)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, item)
		total = total.Add(item.LineTotal)
	}

	return items, total, nil
}

func (s *Service) buildItem(ctx context.Context, reqItem NewOrderItem) (*domain.OrderItem, error) {
	if reqItem.Quantity <= 0 {
		return nil, NewOrderError(ErrInvalidQuantity, apiErrors.ErrInvalidFormat, reqItem.ProductID)
	}

	product, err := s.productRepo.GetProductByID(ctx, reqItem.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewOrderError(ErrProductNotFound, apiErrors.ErrProductNotFound, reqItem.ProductID)
	}
	if !product.Active {
		return nil, NewOrderError(ErrProductInactive, apiErrors.ErrInvalidRequest, product.Name)
	}

	if err := validateDimensions(product, reqItem); err != nil {
		return nil, err
	}

	lineTotal := product.Price.Mul(decimal.NewFromInt(int64(reqItem.Quantity)))

	return &domain.OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    reqItem.Quantity,
		UnitPrice:   product.Price,
		LineTotal:   lineTotal,
		LengthCM:    reqItem.LengthCM,
		WidthCM:     reqItem.WidthCM,
		HeightCM:    reqItem.HeightCM,
	}, nil
}

// validateDimensions rejeita dimensões solicitadas acima do máximo permitido
// do produto, quando o produto define limites
func validateDimensions(product *domain.Product, reqItem NewOrderItem) error {
	exceeds := func(requested, max *float64) bool {
		return requested != nil && max != nil && *requested > *max
	}

	if exceeds(reqItem.LengthCM, product.MaxLengthCM) ||
		exceeds(reqItem.WidthCM, product.MaxWidthCM) ||
		exceeds(reqItem.HeightCM, product.MaxHeightCM) {
		return NewOrderError(ErrDimensionExceeded, apiErrors.ErrInvalidRequest, product.Name)
	}

	return nil
}
