// Package cataloging implementa o catálogo de produtos
package cataloging

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

var (
	ErrProductNotFound = errors.New("produto não encontrado")
	ErrNameRequired    = errors.New("nome do produto é obrigatório")
	ErrInvalidPrice    = errors.New("preço deve ser positivo")
)

type ProductListResponse struct {
	Products   []*domain.Product `json:"products"`
	TotalCount int               `json:"total_count"`
}

type CatalogService interface {
	ListProducts(ctx context.Context, onlyActive bool, page domain.PageWindow) (*ProductListResponse, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, req *domain.UpdateProductRequest) error
}

type Service struct {
	productRepo repository.ProductRepository
}

func NewService(productRepo repository.ProductRepository) CatalogService {
	return &Service{
		productRepo: productRepo,
	}
}

func (s *Service) ListProducts(ctx context.Context, onlyActive bool, page domain.PageWindow) (*ProductListResponse, error) {
	products, totalCount, err := s.productRepo.ListProducts(ctx, onlyActive, page)
	if err != nil {
		return nil, err
	}

	return &ProductListResponse{
		Products:   products,
		TotalCount: totalCount,
	}, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	return product, nil
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, ErrNameRequired
	}

	if !product.Price.GreaterThan(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	return s.productRepo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, req *domain.UpdateProductRequest) error {
	product, err := s.GetProduct(ctx, req.ID)
	if err != nil {
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Price != nil {
		if !req.Price.GreaterThan(decimal.Zero) {
			return ErrInvalidPrice
		}
		product.Price = *req.Price
	}

	if req.Active != nil {
		product.Active = *req.Active
	}

	if req.MaxLengthCM != nil {
		product.MaxLengthCM = req.MaxLengthCM
	}

	if req.MaxWidthCM != nil {
		product.MaxWidthCM = req.MaxWidthCM
	}

	if req.MaxHeightCM != nil {
		product.MaxHeightCM = req.MaxHeightCM
	}

	return s.productRepo.UpdateProduct(ctx, product)
}
