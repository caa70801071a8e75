// Package customering implementa o cadastro de clientes. Vendedores enxergam
// apenas os clientes que criaram; administradores enxergam todos.
package customering

import (
	"context"
	"errors"

	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

var (
	ErrCustomerNotFound = errors.New("cliente não encontrado")
	ErrNameRequired     = errors.New("nome do cliente é obrigatório")
	ErrNotCustomerOwner = errors.New("cliente pertence a outro vendedor")
)

type CustomerListResponse struct {
	Customers  []*domain.Customer `json:"customers"`
	TotalCount int                `json:"total_count"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context, role domain.Role, scopeID string, page domain.PageWindow) (*CustomerListResponse, error)
	GetCustomer(ctx context.Context, role domain.Role, scopeID, customerID string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, creatorID string, customer *domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, role domain.Role, scopeID string, req *domain.UpdateCustomerRequest) error
}

type Service struct {
	customerRepo repository.CustomerRepository
}

func NewService(customerRepo repository.CustomerRepository) CustomerService {
	return &Service{
		customerRepo: customerRepo,
	}
}

func (s *Service) ListCustomers(
	ctx context.Context,
	role domain.Role,
	scopeID string,
	page domain.PageWindow,
) (*CustomerListResponse, error) {
	var createdBy *string
	if role == domain.RoleSeller {
		createdBy = &scopeID
	}

	customers, totalCount, err := s.customerRepo.ListCustomers(ctx, createdBy, page)
	if err != nil {
		return nil, err
	}

	return &CustomerListResponse{
		Customers:  customers,
		TotalCount: totalCount,
	}, nil
}

func (s *Service) GetCustomer(ctx context.Context, role domain.Role, scopeID, customerID string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	if role == domain.RoleSeller && customer.CreatedBy != scopeID {
		return nil, ErrNotCustomerOwner
	}

	return customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, creatorID string, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, ErrNameRequired
	}

	customer.CreatedBy = creatorID
	return s.customerRepo.CreateCustomer(ctx, customer)
}

func (s *Service) UpdateCustomer(
	ctx context.Context,
	role domain.Role,
	scopeID string,
	req *domain.UpdateCustomerRequest,
) error {
	customer, err := s.GetCustomer(ctx, role, scopeID, req.ID)
	if err != nil {
		return err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Document != nil {
		customer.Document = *req.Document
	}
	if req.Street != nil {
		customer.Street = *req.Street
	}
	if req.City != nil {
		customer.City = *req.City
	}
	if req.State != nil {
		customer.State = *req.State
	}
	if req.ZipCode != nil {
		customer.ZipCode = *req.ZipCode
	}

	return s.customerRepo.UpdateCustomer(ctx, customer)
}
