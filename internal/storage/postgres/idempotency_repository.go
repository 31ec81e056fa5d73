package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultKeyTTL = 24 * time.Hour

// checkoutKeyRepository хранит ключи оформления заказа в таблице checkout_keys.
type checkoutKeyRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewIdempotencyRepository создаёт PostgreSQL-реализацию IdempotencyRepository.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return &checkoutKeyRepository{
		db:  store.DB(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *checkoutKeyRepository) CreateProcessing(key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := r.now()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultKeyTTL)
	}

	ctx, cancel := opContext()
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkout_keys (key, request_hash, response, status, ttl_at, created_at, updated_at)
		VALUES ($1,$2,NULL,$3,$4,$5,$5)
	`, key, requestHash, string(domain.IdempotencyStatusProcessing), ttlAt, now)
	if err != nil {
		if !isUniqueViolation(err) {
			return domain.IdempotencyRecord{}, fmt.Errorf("create checkout key: %w", err)
		}
		existing, getErr := r.Get(key)
		if getErr != nil {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
		}
		if existing.RequestHash != requestHash {
			return existing, domain.ErrIdempotencyHashMismatch
		}
		return existing, domain.ErrIdempotencyKeyAlreadyExists
	}

	return domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *checkoutKeyRepository) Get(key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := opContext()
	defer cancel()

	var (
		record    domain.IdempotencyRecord
		statusRaw string
		response  []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT key, request_hash, response, status, ttl_at, created_at, updated_at
		FROM checkout_keys
		WHERE key = $1
	`, key).Scan(
		&record.Key, &record.RequestHash, &response, &statusRaw,
		&record.TTLAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
		}
		return domain.IdempotencyRecord{}, fmt.Errorf("get checkout key: %w", err)
	}

	record.Status = domain.IdempotencyStatus(statusRaw)
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid checkout key status %q for key %s", statusRaw, key)
	}
	if len(response) > 0 {
		record.Response = append([]byte(nil), response...)
	}
	return record, nil
}

func (r *checkoutKeyRepository) MarkDone(key string, response []byte) error {
	return r.markStatus(key, domain.IdempotencyStatusDone, response)
}

func (r *checkoutKeyRepository) MarkFailed(key string, response []byte) error {
	return r.markStatus(key, domain.IdempotencyStatusFailed, response)
}

// DeleteExpired удаляет ключи с ttl_at <= before; limit <= 0 снимает ограничение.
func (r *checkoutKeyRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = r.now()
	}

	ctx, cancel := opContext()
	defer cancel()

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = r.db.ExecContext(ctx, `
			DELETE FROM checkout_keys
			WHERE key IN (
				SELECT key FROM checkout_keys
				WHERE ttl_at <= $1
				ORDER BY ttl_at
				LIMIT $2
			)
		`, before, limit)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM checkout_keys WHERE ttl_at <= $1`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired checkout keys: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checkout keys rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *checkoutKeyRepository) markStatus(key string, status domain.IdempotencyStatus, response []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := opContext()
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE checkout_keys
		SET response = $2,
		    status = $3,
		    updated_at = $4
		WHERE key = $1
	`, key, response, string(status), r.now())
	if err != nil {
		return fmt.Errorf("mark checkout key %s: %w", status, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checkout keys rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}
	return nil
}

var _ domain.IdempotencyRepository = (*checkoutKeyRepository)(nil)
