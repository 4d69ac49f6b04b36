package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierrors "github.com/abezpalov/inventory_service/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lockNotAvailable is the SQLSTATE reported by Postgres when a statement
// exceeds lock_timeout while waiting for a row lock.
const lockNotAvailable = "55P03"

const productColumns = "id, name, price, stock_quantity, version, created_at, updated_at"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
// lockTimeout bounds how long Purchase waits for a contended row lock.
func NewPgStore(dbp *pgxpool.Pool, lockTimeout time.Duration) *PgStore {
	return &PgStore{
		db:          dbp,
		lockTimeout: lockTimeout,
	}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by creation time, then ID.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system with version 1.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, name string, price int64, stock int32) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, price, stock_quantity)
         VALUES ($1, $2, $3)
         RETURNING `+productColumns,
		name, price, stock)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details using optimistic locking.
// The compare-and-write is a single statement, so two writers holding the
// same expected version cannot both succeed. Returns ErrProductNotFound if
// the ID is unknown and ErrVersionConflict if the stored version moved on.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, name string, price int64, stock int32, expectedVersion int32) (*Product, error) {
	var product *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE products
             SET name = $2, price = $3, stock_quantity = $4,
                 version = version + 1, updated_at = now()
             WHERE id = $1 AND version = $5
             RETURNING `+productColumns,
			id, name, price, stock, expectedVersion)

		updated, err := scanProduct(row)
		if err == nil {
			product = updated
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update product: %w", err)
		}

		// Zero rows matched: either the product does not exist or the
		// version check failed. Re-read inside the same transaction to
		// tell the two apart.
		if _, err := scanProduct(tx.QueryRow(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1`, id)); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ierrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to re-read product after update miss: %w", err)
		}
		return ierrors.ErrVersionConflict
	})

	if txErr != nil {
		return nil, txErr
	}
	return product, nil
}

// Purchase decrements stock under an exclusive row lock. The SELECT FOR UPDATE
// serializes concurrent purchases of the same product; purchases of different
// products lock different rows and do not block each other. The lock is held
// until the transaction commits or rolls back, so the check-then-decrement
// can never interleave with another writer.
func (p *PgStore) Purchase(ctx context.Context, id uuid.UUID, quantity int32) (*Product, error) {
	var product *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		// Bound the lock wait; expiry surfaces as SQLSTATE 55P03.
		if _, err := tx.Exec(ctx,
			fmt.Sprintf("SET LOCAL lock_timeout = '%d'", p.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}

		current, err := scanProduct(tx.QueryRow(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ierrors.ErrProductNotFound
			}
			if isLockTimeout(err) {
				return ierrors.ErrLockTimeout
			}
			return fmt.Errorf("failed to lock product row: %w", err)
		}

		if current.StockQuantity < quantity {
			return ierrors.ErrInsufficientStock
		}

		updated, err := scanProduct(tx.QueryRow(ctx,
			`UPDATE products
             SET stock_quantity = stock_quantity - $2,
                 version = version + 1, updated_at = now()
             WHERE id = $1
             RETURNING `+productColumns,
			id, quantity))
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		product = updated
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return product, nil
}

// withTransaction runs fn inside a transaction that is committed on success
// and rolled back on every error path, so a failed precondition check never
// leaves a partial write behind.
func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to rollback transaction: %w", errors.Join(err, rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isLockTimeout reports whether err is a Postgres lock wait expiry.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
