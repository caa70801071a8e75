package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/internal/domain"
)

const customersTable = "customers c"

type CustomerRepository interface {
	ListCustomers(ctx context.Context, createdBy *string, page domain.PageWindow) ([]*domain.Customer, int, error)
	CountCustomers(ctx context.Context) (int, error)
	// CountCustomersBySeller conta clientes criados por cada vendedor dentro
	// da janela, em ordem alfabética de nome do vendedor
	CountCustomersBySeller(ctx context.Context, start, end time.Time) ([]*domain.SellerCount, error)
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
}

type customerRepository struct {
	conn *postgres.Connection
}

func NewCustomerRepository(conn *postgres.Connection) CustomerRepository {
	return &customerRepository{
		conn: conn,
	}
}

var customerColumns = []string{
	"c.id",
	"c.name",
	"c.document",
	"c.street",
	"c.city",
	"c.state",
	"c.zip_code",
	"c.created_by",
	"c.created_at",
	"c.updated_at",
}

func (r *customerRepository) ListCustomers(
	ctx context.Context,
	createdBy *string,
	page domain.PageWindow,
) ([]*domain.Customer, int, error) {
	columns := append(append([]string{}, customerColumns...), "COUNT(*) OVER() AS exact_count")

	queryBuilder := squirrel.
		Select(columns...).
		From(customersTable).
		OrderBy("c.name ASC").
		Offset(uint64(page.From)).
		Limit(uint64(page.Limit())).
		PlaceholderFormat(squirrel.Dollar)

	if createdBy != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"c.created_by": *createdBy})
	}

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao construir consulta de clientes")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao consultar clientes")
	}
	defer rows.Close()

	customers := make([]*domain.Customer, 0)
	var exactCount int

	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Document,
			&customer.Street,
			&customer.City,
			&customer.State,
			&customer.ZipCode,
			&customer.CreatedBy,
			&customer.CreatedAt,
			&customer.UpdatedAt,
			&exactCount,
		); err != nil {
			return nil, 0, errors.Wrap(err, "erro ao escanear cliente")
		}
		customers = append(customers, &customer)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "erro durante iteração de clientes")
	}

	return customers, exactCount, nil
}

func (r *customerRepository) CountCustomers(ctx context.Context) (int, error) {
	sqlQuery, args, err := squirrel.
		Select("COUNT(*)").
		From(customersTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao construir contagem de clientes")
	}

	var count int
	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "erro ao contar clientes")
	}

	return count, nil
}

func (r *customerRepository) CountCustomersBySeller(ctx context.Context, start, end time.Time) ([]*domain.SellerCount, error) {
	queryBuilder := squirrel.
		Select(
			"c.created_by AS seller_id",
			"p.name AS seller_name",
			"COUNT(*) AS customer_count",
		).
		From(customersTable).
		Join(profilesTable + " p ON p.id = c.created_by").
		Where(squirrel.GtOrEq{"c.created_at": start}).
		Where(squirrel.LtOrEq{"c.created_at": end}).
		GroupBy("c.created_by", "p.name").
		OrderBy("p.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir contagem de clientes por vendedor")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar clientes por vendedor")
	}
	defer rows.Close()

	counts := make([]*domain.SellerCount, 0)
	for rows.Next() {
		var count domain.SellerCount
		if err := rows.Scan(&count.SellerID, &count.SellerName, &count.Count); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear clientes por vendedor")
		}
		counts = append(counts, &count)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de clientes por vendedor")
	}

	return counts, nil
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	sqlQuery, args, err := squirrel.
		Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{"c.id": customerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de cliente")
	}

	var customer domain.Customer
	err = r.conn.QueryRow(ctx, sqlQuery, args...).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Document,
		&customer.Street,
		&customer.City,
		&customer.State,
		&customer.ZipCode,
		&customer.CreatedBy,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar cliente")
	}

	return &customer, nil
}

func (r *customerRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	sqlQuery, args, err := squirrel.
		Insert("customers").
		Columns("name", "document", "street", "city", "state", "zip_code", "created_by").
		Values(customer.Name, customer.Document, customer.Street, customer.City, customer.State, customer.ZipCode, customer.CreatedBy).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir inserção de cliente")
	}

	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&customer.ID, &customer.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "erro ao inserir cliente")
	}

	return customer, nil
}

func (r *customerRepository) UpdateCustomer(ctx context.Context, customer *domain.Customer) error {
	queryBuilder := squirrel.
		Update("customers").
		Set("name", customer.Name).
		Set("document", customer.Document).
		Set("street", customer.Street).
		Set("city", customer.City).
		Set("state", customer.State).
		Set("zip_code", customer.ZipCode).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": customer.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir atualização de cliente")
	}

	if _, err := r.conn.Exec(ctx, sqlQuery, args...); err != nil {
		return errors.Wrap(err, "erro ao atualizar cliente")
	}

	return nil
}
