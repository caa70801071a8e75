package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

const productsTable = "products"

type ProductRepository interface {
	ListProducts(ctx context.Context, onlyActive bool, page domain.PageWindow) ([]*domain.Product, int, error)
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
}

type productRepository struct {
	conn *postgres.Connection
}

func NewProductRepository(conn *postgres.Connection) ProductRepository {
	return &productRepository{
		conn: conn,
	}
}

var productColumns = []string{
	"id",
	"name",
	"price",
	"active",
	"max_length_cm",
	"max_width_cm",
	"max_height_cm",
	"created_at",
	"updated_at",
}

func (r *productRepository) ListProducts(
	ctx context.Context,
	onlyActive bool,
	page domain.PageWindow,
) ([]*domain.Product, int, error) {
	columns := append(append([]string{}, productColumns...), "COUNT(*) OVER() AS exact_count")

	queryBuilder := squirrel.
		Select(columns...).
		From(productsTable).
		OrderBy("name ASC").
		Offset(uint64(page.From)).
		Limit(uint64(page.Limit())).
		PlaceholderFormat(squirrel.Dollar)

	if onlyActive {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"active": true})
	}

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao construir consulta de produtos")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao consultar produtos")
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	var exactCount int

	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Active,
			&product.MaxLengthCM,
			&product.MaxWidthCM,
			&product.MaxHeightCM,
			&product.CreatedAt,
			&product.UpdatedAt,
			&exactCount,
		); err != nil {
			return nil, 0, errors.Wrap(err, "erro ao escanear produto")
		}
		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "erro durante iteração de produtos")
	}

	return products, exactCount, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	sqlQuery, args, err := squirrel.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de produto")
	}

	var product domain.Product
	err = r.conn.QueryRow(ctx, sqlQuery, args...).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Active,
		&product.MaxLengthCM,
		&product.MaxWidthCM,
		&product.MaxHeightCM,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar produto")
	}

	return &product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	sqlQuery, args, err := squirrel.
		Insert(productsTable).
		Columns("name", "price", "active", "max_length_cm", "max_width_cm", "max_height_cm").
		Values(product.Name, product.Price, product.Active, product.MaxLengthCM, product.MaxWidthCM, product.MaxHeightCM).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir inserção de produto")
	}

	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&product.ID, &product.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "erro ao inserir produto")
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	queryBuilder := squirrel.
		Update(productsTable).
		Set("name", product.Name).
		Set("price", product.Price).
		Set("active", product.Active).
		Set("max_length_cm", product.MaxLengthCM).
		Set("max_width_cm", product.MaxWidthCM).
		Set("max_height_cm", product.MaxHeightCM).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": product.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir atualização de produto")
	}

	if _, err := r.conn.Exec(ctx, sqlQuery, args...); err != nil {
		return errors.Wrap(err, "erro ao atualizar produto")
	}

	return nil
}
