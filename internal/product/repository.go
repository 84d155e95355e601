package product

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Repository defines catalog operations.
type Repository interface {
	// Register inserts a new product. Fails with ErrDuplicateID when the id
	// is already registered.
	Register(ctx context.Context, p Product) (*Product, error)

	// GetByID retrieves a product. Fails with ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Product, error)

	// List returns the most recently registered products, newest first.
	// limit 0 means no limit.
	List(ctx context.Context, limit int) ([]Product, error)
}

// InMemoryRepository is a thread-safe in-memory Repository used in tests and
// when no database is configured.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{products: make(map[string]Product)}
}

// Register inserts a new product.
func (r *InMemoryRepository) Register(_ context.Context, p Product) (*Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[p.ID]; exists {
		return nil, ErrDuplicateID
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now().UTC()
	}
	r.products[p.ID] = p
	r.order = append(r.order, p.ID)

	registered := p
	return &registered, nil
}

// GetByID retrieves a product by id.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := p
	return &found, nil
}

// List returns products newest first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Product
	for i := len(r.order) - 1; i >= 0; i-- {
		results = append(results, r.products[r.order[i]])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// PostgresRepository is the Postgres-backed Repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a catalog over an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Register inserts a new product.
func (r *PostgresRepository) Register(ctx context.Context, p Product) (*Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO products (id, name, price, seller_verified, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`
	var id string
	err := r.db.QueryRowContext(ctx, q, p.ID, p.Name, p.Price, p.SellerVerified, p.RegisteredAt).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// ON CONFLICT DO NOTHING returns no row when the id already exists.
		return nil, ErrDuplicateID
	}
	if err != nil {
		return nil, err
	}

	registered := p
	return &registered, nil
}

// GetByID retrieves a product by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	const q = `
		SELECT id, name, price, seller_verified, registered_at
		FROM products
		WHERE id = $1`
	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.SellerVerified, &p.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Product, error) {
	q := `
		SELECT id, name, price, seller_verified, registered_at
		FROM products
		ORDER BY registered_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.SellerVerified, &p.RegisteredAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
