// Package dbmanager manages the PostgreSQL connection pool and the
// per-connection session scopes used for tenant isolation.
package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/config"
)

type postgresConn struct {
	conn             *sql.Conn
	cancel           context.CancelFunc
	scopes           map[string]string
	configuredScopes []string
	pool             *postgresPool
}

type postgresPool struct {
	configuredScopes []string
	connRequests     uint64
	connReturns      uint64
	db               *sql.DB
}

// validScopeNameRegex ensures scope names are valid PostgreSQL identifiers
var validScopeNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// NewPostgresqlDb creates a new PostgreSQL connection pool with the given
// configured scopes. Scope names are validated up front so they can be used
// as SQL identifiers.
func NewPostgresqlDb(configuredScopes []string) (ScopedDb, error) {
	for _, scope := range configuredScopes {
		if !validScopeNameRegex.MatchString(scope) {
			return nil, fmt.Errorf("invalid scope name: %s", scope)
		}
	}

	sqlDB, err := sql.Open("pgx", config.TrustStoreDSN())
	if err != nil {
		log.Error().Err(err).Msg("failed to open db")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		log.Error().Err(err).Msg("failed to ping db")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &postgresPool{
		configuredScopes: configuredScopes,
		db:               sqlDB,
	}, nil
}

// Conn returns a new connection from the pool with session timeouts set and
// all configured scopes reset.
func (p *postgresPool) Conn(ctx context.Context) (ScopedConn, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := p.db.Conn(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to obtain connection")
		cancel()
		return nil, fmt.Errorf("failed to obtain database connection: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			cancel()
			conn.Close()
			log.Error().Interface("panic", r).Msg("recovered from panic while setting up connection")
		}
	}()

	sessionParams := map[string]string{
		"lock_timeout":                        "5s",
		"statement_timeout":                   "5s",
		"idle_in_transaction_session_timeout": "5s",
	}

	for param, value := range sessionParams {
		query := fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(param), pq.QuoteLiteral(value))
		if _, err := conn.ExecContext(ctx, query); err != nil {
			cancel()
			conn.Close()
			return nil, fmt.Errorf("failed to set %s: %w", param, err)
		}
	}

	h := &postgresConn{
		configuredScopes: p.configuredScopes,
		scopes:           make(map[string]string),
		cancel:           cancel,
		pool:             p,
		conn:             conn,
	}

	if err := h.DropAllScopes(ctx); err != nil {
		cancel()
		conn.Close()
		return nil, fmt.Errorf("failed to initialize scopes: %w", err)
	}

	atomic.AddUint64(&p.connRequests, 1)
	return h, nil
}

// Stats returns the number of connection requests and returns made to the pool.
func (p *postgresPool) Stats() (requests, returns uint64) {
	return atomic.LoadUint64(&p.connRequests), atomic.LoadUint64(&p.connReturns)
}

// Close cleans up the scopes and returns the connection back to the pool.
func (h *postgresConn) Close(ctx context.Context) {
	if h.conn == nil {
		return
	}

	if err := h.DropAllScopes(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to drop scopes during connection close")
	}

	h.conn.Close()
	if h.cancel != nil {
		h.cancel()
	}

	atomic.AddUint64(&h.pool.connReturns, 1)
}

func (h *postgresConn) isConfiguredScope(scope string) bool {
	for _, s := range h.configuredScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AddScope sets a session scope on the connection.
func (h *postgresConn) AddScope(ctx context.Context, scope, value string) error {
	if h.conn == nil {
		return fmt.Errorf("no active connection")
	}

	if !validScopeNameRegex.MatchString(scope) {
		return fmt.Errorf("invalid scope name: %s", scope)
	}

	if h.isConfiguredScope(scope) {
		query := fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(scope), pq.QuoteLiteral(value))
		if _, err := h.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to set scope %q: %w", scope, err)
		}
		h.scopes[scope] = value
	}

	return nil
}

// DropScope resets a single session scope on the connection.
func (h *postgresConn) DropScope(ctx context.Context, scope string) error {
	if h.conn == nil {
		return nil
	}

	if !validScopeNameRegex.MatchString(scope) {
		return fmt.Errorf("invalid scope name: %s", scope)
	}

	query := fmt.Sprintf("RESET %s", pq.QuoteIdentifier(scope))
	if _, err := h.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to reset scope %q: %w", scope, err)
	}
	delete(h.scopes, scope)
	return nil
}

// DropAllScopes resets all configured scopes on the connection.
func (h *postgresConn) DropAllScopes(ctx context.Context) error {
	if h.conn == nil {
		return nil
	}

	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for dropping scopes: %w", err)
	}
	defer tx.Rollback()

	for _, scope := range h.configuredScopes {
		query := fmt.Sprintf("RESET %s", pq.QuoteIdentifier(scope))
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset scope %q: %w", scope, err)
		}
		delete(h.scopes, scope)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scope changes: %w", err)
	}

	return nil
}

// Conn returns the underlying connection.
func (h *postgresConn) Conn() *sql.Conn {
	return h.conn
}
