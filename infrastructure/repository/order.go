// Package repository contém as implementações dos repositórios para acesso aos dados
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

const (
	ordersTable     = "orders o"
	orderItemsTable = "order_items"
)

type OrderRepository interface {
	// ListOrders retorna a página solicitada e a contagem exata do conjunto
	// filtrado antes da paginação
	ListOrders(ctx context.Context, filter domain.OrderFilter, sort domain.OrderSort, page domain.PageWindow) ([]*domain.Order, int, error)
	// SumOrderTotals agrega os totais não paginados do mesmo recorte
	SumOrderTotals(ctx context.Context, filter domain.OrderFilter) (*domain.OrderTotals, error)
	// CountDistinctCustomers conta clientes distintos entre os pedidos do recorte
	CountDistinctCustomers(ctx context.Context, filter domain.OrderFilter) (int, error)
	// SalesByDay soma total_price por dia UTC; dias sem pedido não aparecem
	SalesByDay(ctx context.Context, filter domain.OrderFilter) ([]domain.DailySales, error)
	// SellerOrderAggregates agrupa pedidos da janela por vendedor, em ordem
	// alfabética de nome
	SellerOrderAggregates(ctx context.Context, start, end time.Time) ([]*domain.SellerAggregate, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	// UpdateOrderWithItems aplica a reconciliação de itens (remover, atualizar,
	// inserir) e o novo total do pedido em uma única transação
	UpdateOrderWithItems(ctx context.Context, order *domain.Order, deleteItemIDs []string, updateItems, insertItems []*domain.OrderItem) error
}

type orderRepository struct {
	conn *postgres.Connection
}

func NewOrderRepository(conn *postgres.Connection) OrderRepository {
	return &orderRepository{
		conn: conn,
	}
}

var orderColumns = []string{
	"o.id",
	"o.number",
	"o.status",
	"o.total_price",
	"o.customer_id",
	"o.customer_name",
	"o.seller_id",
	"o.seller_name",
	"o.created_at",
	"o.updated_at",
}

// applyOrderFilter restringe a consulta ao recorte: janela fechada de
// created_at e, quando presentes, status e vendedor
func applyOrderFilter(builder squirrel.SelectBuilder, filter domain.OrderFilter) squirrel.SelectBuilder {
	builder = builder.
		Where(squirrel.GtOrEq{"o.created_at": filter.Start}).
		Where(squirrel.LtOrEq{"o.created_at": filter.End})

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"o.status": *filter.Status})
	}

	if filter.SellerID != nil {
		builder = builder.Where(squirrel.Eq{"o.seller_id": *filter.SellerID})
	}

	return builder
}

func (r *orderRepository) ListOrders(
	ctx context.Context,
	filter domain.OrderFilter,
	sort domain.OrderSort,
	page domain.PageWindow,
) ([]*domain.Order, int, error) {
	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}

	// COUNT(*) OVER() devolve a contagem exata do conjunto filtrado na mesma
	// consulta, antes do LIMIT/OFFSET
	columns := append(append([]string{}, orderColumns...), "COUNT(*) OVER() AS exact_count")

	queryBuilder := applyOrderFilter(
		squirrel.Select(columns...).From(ordersTable),
		filter,
	).
		OrderBy("o."+sort.Column+" "+direction).
		Offset(uint64(page.From)).
		Limit(uint64(page.Limit())).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao construir consulta de pedidos")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao consultar pedidos")
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	var exactCount int

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.Number,
			&order.Status,
			&order.TotalPrice,
			&order.CustomerID,
			&order.CustomerName,
			&order.SellerID,
			&order.SellerName,
			&order.CreatedAt,
			&order.UpdatedAt,
			&exactCount,
		); err != nil {
			return nil, 0, errors.Wrap(err, "erro ao escanear pedido")
		}

		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "erro durante iteração de pedidos")
	}

	// Página vazia além da última: a contagem vem de uma consulta dedicada
	if len(orders) == 0 {
		count, err := r.countOrders(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		return orders, count, nil
	}

	return orders, exactCount, nil
}

func (r *orderRepository) countOrders(ctx context.Context, filter domain.OrderFilter) (int, error) {
	sqlQuery, args, err := applyOrderFilter(
		squirrel.Select("COUNT(*)").From(ordersTable),
		filter,
	).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao construir contagem de pedidos")
	}

	var count int
	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "erro ao contar pedidos")
	}

	return count, nil
}

func (r *orderRepository) SumOrderTotals(ctx context.Context, filter domain.OrderFilter) (*domain.OrderTotals, error) {
	queryBuilder := applyOrderFilter(
		squirrel.Select(
			"COALESCE(SUM(o.total_price), 0) AS total_price",
			"COUNT(*) AS total_count",
			"COUNT(*) FILTER (WHERE o.status = 'IN_PRODUCTION') AS in_production_count",
			"COUNT(*) FILTER (WHERE o.status = 'APPROVED') AS ready_to_produce_count",
		).From(ordersTable),
		filter,
	).PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de totais")
	}

	totals := &domain.OrderTotals{}
	err = r.conn.QueryRow(ctx, sqlQuery, args...).Scan(
		&totals.TotalPrice,
		&totals.TotalCount,
		&totals.InProductionCount,
		&totals.ReadyToProduceCount,
	)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar totais de pedidos")
	}

	return totals, nil
}

func (r *orderRepository) CountDistinctCustomers(ctx context.Context, filter domain.OrderFilter) (int, error) {
	sqlQuery, args, err := applyOrderFilter(
		squirrel.Select("COUNT(DISTINCT o.customer_id)").From(ordersTable),
		filter,
	).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "erro ao construir contagem de clientes")
	}

	var count int
	if err := r.conn.QueryRow(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "erro ao contar clientes distintos")
	}

	return count, nil
}

func (r *orderRepository) SalesByDay(ctx context.Context, filter domain.OrderFilter) ([]domain.DailySales, error) {
	// Bucket por dia UTC, alinhado aos limites da janela
	queryBuilder := applyOrderFilter(
		squirrel.Select(
			"to_char(o.created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day",
			"COALESCE(SUM(o.total_price), 0) AS total",
		).From(ordersTable),
		filter,
	).
		GroupBy("day").
		OrderBy("day ASC").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de vendas por dia")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar vendas por dia")
	}
	defer rows.Close()

	sales := make([]domain.DailySales, 0)
	for rows.Next() {
		var entry domain.DailySales
		if err := rows.Scan(&entry.Day, &entry.Total); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear vendas por dia")
		}
		sales = append(sales, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de vendas por dia")
	}

	return sales, nil
}

func (r *orderRepository) SellerOrderAggregates(ctx context.Context, start, end time.Time) ([]*domain.SellerAggregate, error) {
	queryBuilder := squirrel.
		Select(
			"o.seller_id",
			"o.seller_name",
			"COUNT(*) AS order_count",
			"COALESCE(SUM(o.total_price), 0) AS total_value",
		).
		From(ordersTable).
		Where(squirrel.GtOrEq{"o.created_at": start}).
		Where(squirrel.LtOrEq{"o.created_at": end}).
		GroupBy("o.seller_id", "o.seller_name").
		OrderBy("o.seller_name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir agregação por vendedor")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar agregação por vendedor")
	}
	defer rows.Close()

	aggregates := make([]*domain.SellerAggregate, 0)
	for rows.Next() {
		var aggregate domain.SellerAggregate
		if err := rows.Scan(
			&aggregate.SellerID,
			&aggregate.SellerName,
			&aggregate.OrderCount,
			&aggregate.TotalValue,
		); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear agregação por vendedor")
		}
		aggregates = append(aggregates, &aggregate)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de agregação por vendedor")
	}

	return aggregates, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	sqlQuery, args, err := squirrel.
		Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"o.id": orderID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de pedido")
	}

	var order domain.Order
	err = r.conn.QueryRow(ctx, sqlQuery, args...).Scan(
		&order.ID,
		&order.Number,
		&order.Status,
		&order.TotalPrice,
		&order.CustomerID,
		&order.CustomerName,
		&order.SellerID,
		&order.SellerName,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar pedido")
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	queryBuilder := squirrel.
		Select(
			"i.id",
			"i.order_id",
			"i.product_id",
			"p.name",
			"i.quantity",
			"i.unit_price",
			"i.line_total",
			"i.length_cm",
			"i.width_cm",
			"i.height_cm",
		).
		From(orderItemsTable + " i").
		Join(productsTable + " p ON p.id = i.product_id").
		Where(squirrel.Eq{"i.order_id": orderID}).
		OrderBy("i.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de itens")
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar itens do pedido")
	}
	defer rows.Close()

	items := make([]*domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
			&item.LengthCM,
			&item.WidthCM,
			&item.HeightCM,
		); err != nil {
			return nil, errors.Wrap(err, "erro ao escanear item do pedido")
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de itens")
	}

	return items, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		orderSQL, orderArgs, err := squirrel.
			Insert("orders").
			Columns("number", "status", "total_price", "customer_id", "customer_name", "seller_id", "seller_name").
			Values(order.Number, order.Status, order.TotalPrice, order.CustomerID, order.CustomerName, order.SellerID, order.SellerName).
			Suffix("RETURNING id, created_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "erro ao construir inserção do pedido")
		}

		if err := tx.QueryRowContext(ctx, orderSQL, orderArgs...).Scan(&order.ID, &order.CreatedAt); err != nil {
			return errors.Wrap(err, "erro ao inserir pedido")
		}

		if len(order.Items) == 0 {
			return nil
		}

		itemsBuilder := squirrel.
			Insert(orderItemsTable).
			Columns("order_id", "product_id", "quantity", "unit_price", "line_total", "length_cm", "width_cm", "height_cm").
			PlaceholderFormat(squirrel.Dollar)

		for _, item := range order.Items {
			itemsBuilder = itemsBuilder.Values(
				order.ID,
				item.ProductID,
				item.Quantity,
				item.UnitPrice,
				item.LineTotal,
				item.LengthCM,
				item.WidthCM,
				item.HeightCM,
			)
		}

		itemsSQL, itemsArgs, err := itemsBuilder.ToSql()
		if err != nil {
			return errors.Wrap(err, "erro ao construir inserção dos itens")
		}

		if _, err := tx.ExecContext(ctx, itemsSQL, itemsArgs...); err != nil {
			return errors.Wrap(err, "erro ao inserir itens do pedido")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	sqlQuery, args, err := squirrel.
		Update("orders").
		Set("status", status).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": orderID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "erro ao construir atualização de status")
	}

	if _, err := r.conn.Exec(ctx, sqlQuery, args...); err != nil {
		return errors.Wrap(err, "erro ao atualizar status do pedido")
	}

	return nil
}

// UpdateOrderWithItems executa a sequência remover/atualizar/inserir dos itens
// junto com a atualização do pedido dentro de uma transação única, evitando
// estados parciais quando um dos passos falha
func (r *orderRepository) UpdateOrderWithItems(
	ctx context.Context,
	order *domain.Order,
	deleteItemIDs []string,
	updateItems, insertItems []*domain.OrderItem,
) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		orderSQL, orderArgs, err := squirrel.
			Update("orders").
			Set("total_price", order.TotalPrice).
			Set("customer_id", order.CustomerID).
			Set("customer_name", order.CustomerName).
			Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
			Where(squirrel.Eq{"id": order.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "erro ao construir atualização do pedido")
		}

		if _, err := tx.ExecContext(ctx, orderSQL, orderArgs...); err != nil {
			return errors.Wrap(err, "erro ao atualizar pedido")
		}

		if len(deleteItemIDs) > 0 {
			deleteSQL, deleteArgs, err := squirrel.
				Delete(orderItemsTable).
				Where(squirrel.Eq{"order_id": order.ID, "id": deleteItemIDs}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return errors.Wrap(err, "erro ao construir remoção de itens")
			}

			if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
				return errors.Wrap(err, "erro ao remover itens do pedido")
			}
		}

		for _, item := range updateItems {
			updateSQL, updateArgs, err := squirrel.
				Update(orderItemsTable).
				Set("product_id", item.ProductID).
				Set("quantity", item.Quantity).
				Set("unit_price", item.UnitPrice).
				Set("line_total", item.LineTotal).
				Set("length_cm", item.LengthCM).
				Set("width_cm", item.WidthCM).
				Set("height_cm", item.HeightCM).
				Where(squirrel.Eq{"id": item.ID, "order_id": order.ID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return errors.Wrap(err, "erro ao construir atualização de item")
			}

			if _, err := tx.ExecContext(ctx, updateSQL, updateArgs...); err != nil {
				return errors.Wrap(err, "erro ao atualizar item do pedido")
			}
		}

		if len(insertItems) > 0 {
			insertBuilder := squirrel.
				Insert(orderItemsTable).
				Columns("order_id", "product_id", "quantity", "unit_price", "line_total", "length_cm", "width_cm", "height_cm").
				PlaceholderFormat(squirrel.Dollar)

			for _, item := range insertItems {
				insertBuilder = insertBuilder.Values(
					order.ID,
					item.ProductID,
					item.Quantity,
					item.UnitPrice,
					item.LineTotal,
					item.LengthCM,
					item.WidthCM,
					item.HeightCM,
				)
			}

			insertSQL, insertArgs, err := insertBuilder.ToSql()
			if err != nil {
				return errors.Wrap(err, "erro ao construir inserção de itens")
			}

			if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
				return errors.Wrap(err, "erro ao inserir itens do pedido")
			}
		}

		return nil
	})
}
