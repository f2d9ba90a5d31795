package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrNilRecord      = errors.New("record is nil")
)

// RecordStore is the persistence contract used by the tool executor.
type RecordStore interface {
	// FindClientByName resolves an informal name reference with a
	// case-insensitive substring match. When several clients match, the
	// oldest one wins; callers treat that as a documented limitation.
	FindClientByName(ctx context.Context, name string) (*Client, error)
	CreateClient(ctx context.Context, c *Client) error
	CreateInvoice(ctx context.Context, inv *Invoice) error
	// NextInvoiceNumber returns the next sequential invoice number for the
	// given year, starting at 1.
	NextInvoiceNumber(ctx context.Context, year int) (int, error)
}

// Config configures the Postgres connection.
type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
}

// PostgresStore persists clients and invoices in Postgres via bun. Each
// create is a single-statement insert; no multi-statement transaction spans
// resolve and create, so concurrent same-name creates can both succeed.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// NewWithDB wraps an existing bun handle. Used by tests and migrations.
func NewWithDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables when they do not exist yet. Intended for
// startup; production deployments can manage the schema out of band instead.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, model := range []any{(*Client)(nil), (*Invoice)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindClientByName(ctx context.Context, name string) (*Client, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrClientNotFound
	}

	client := new(Client)
	err := s.db.NewSelect().
		Model(client).
		Where("name ILIKE ?", "%"+trimmed+"%").
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("find client by name: %w", err)
	}
	return client, nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, c *Client) error {
	if c == nil {
		return ErrNilRecord
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv == nil {
		return ErrNilRecord
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	if inv.Status == "" {
		inv.Status = InvoiceStatusDraft
	}
	if _, err := s.db.NewInsert().Model(inv).Exec(ctx); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PostgresStore) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	var max sql.NullInt64
	err := s.db.NewSelect().
		Model((*Invoice)(nil)).
		ColumnExpr("MAX(number)").
		Where("year = ?", year).
		Scan(ctx, &max)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}
