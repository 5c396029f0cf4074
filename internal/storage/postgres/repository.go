package postgres

import (
	"context"
	"fmt"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository with a PostgreSQL backend
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	users   *UserRepository
	events  *EventRepository
	tickets *TicketRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	return newRepository(pool, nil), nil
}

func newRepository(pool *pgxpool.Pool, tx pgx.Tx) *Repository {
	c := conn{pool: pool, tx: tx}
	return &Repository{
		pool:    pool,
		tx:      tx,
		users:   &UserRepository{conn: c},
		events:  &EventRepository{conn: c},
		tickets: &TicketRepository{conn: c},
	}
}

func (r *Repository) Users() users.Repository { return r.users }

func (r *Repository) Events() events.Repository { return r.events }

func (r *Repository) Tickets() tickets.Repository { return r.tickets }

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// WithTx executes fn within a database transaction. Nested calls reuse the
// outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, newRepository(r.pool, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// conn is embedded by each table repository. Inside WithTx every statement
// runs on the shared transaction.
type conn struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (c conn) queryer() queryer {
	if c.tx != nil {
		return c.tx
	}
	return c.pool
}

func (c conn) beginner() beginner {
	if c.tx != nil {
		return c.tx
	}
	return c.pool
}
