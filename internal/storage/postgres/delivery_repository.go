package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Дата, сумма и позиции доставки берутся из заказа, в deliveries хранится только прогресс.
const deliverySelect = `
	SELECT d.order_id, o.order_date, o.total, d.status, d.received, d.updated_at
	FROM deliveries d
	JOIN orders o ON o.id = d.order_id
`

type deliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository создаёт PostgreSQL-реализацию DeliveryRepository.
func NewDeliveryRepository(store *Store) domain.DeliveryRepository {
	return &deliveryRepository{db: store.DB()}
}

func (r *deliveryRepository) Create(delivery domain.DeliveryOrder) error {
	ctx, cancel := opContext()
	defer cancel()

	if delivery.UpdatedAt.IsZero() {
		delivery.UpdatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (order_id, status, received, updated_at)
		VALUES ($1,$2,$3,$4)
	`, delivery.OrderID, delivery.Status.String(), delivery.Received, delivery.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrOrderAlreadyExists
		case isForeignKeyViolation(err):
			return fmt.Errorf("create delivery %s: %w", delivery.OrderID, domain.ErrOrderNotFound)
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepository) Get(orderID string) (domain.DeliveryOrder, error) {
	ctx, cancel := opContext()
	defer cancel()

	delivery, err := scanDelivery(r.db.QueryRowContext(ctx, deliverySelect+` WHERE d.order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DeliveryOrder{}, domain.ErrDeliveryNotFound
		}
		return domain.DeliveryOrder{}, fmt.Errorf("select delivery: %w", err)
	}

	items, err := loadItems(ctx, r.db, orderID)
	if err != nil {
		return domain.DeliveryOrder{}, err
	}
	delivery.Items = items
	return delivery, nil
}

// List возвращает доставки от новых заказов к старым.
func (r *deliveryRepository) List() ([]domain.DeliveryOrder, error) {
	ctx, cancel := opContext()
	defer cancel()

	rows, err := r.db.QueryContext(ctx, deliverySelect+` ORDER BY o.order_date DESC, d.order_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]domain.DeliveryOrder, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery row: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery rows: %w", err)
	}

	itemsByOrder, err := loadAllItems(ctx, r.db)
	if err != nil {
		return nil, err
	}
	for i := range deliveries {
		deliveries[i].Items = itemsByOrder[deliveries[i].OrderID]
	}
	return deliveries, nil
}

// Save обновляет статус и отметку о получении.
func (r *deliveryRepository) Save(delivery domain.DeliveryOrder) error {
	ctx, cancel := opContext()
	defer cancel()

	if delivery.UpdatedAt.IsZero() {
		delivery.UpdatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE deliveries
		SET status = $2,
		    received = $3,
		    updated_at = $4
		WHERE order_id = $1
	`, delivery.OrderID, delivery.Status.String(), delivery.Received, delivery.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delivery rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDeliveryNotFound
	}
	return nil
}

func scanDelivery(row rowScanner) (domain.DeliveryOrder, error) {
	var (
		d      domain.DeliveryOrder
		status string
	)
	if err := row.Scan(&d.OrderID, &d.Date, &d.Total, &status, &d.Received, &d.UpdatedAt); err != nil {
		return domain.DeliveryOrder{}, err
	}

	parsed, ok := domain.ParseDeliveryStatus(status)
	if !ok {
		return domain.DeliveryOrder{}, fmt.Errorf("unknown delivery status %q for order %s", status, d.OrderID)
	}
	d.Status = parsed
	d.Date = d.Date.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

var _ domain.DeliveryRepository = (*deliveryRepository)(nil)
