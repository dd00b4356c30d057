package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connector holds the process-wide connection pool behind an explicit
// init-once/teardown lifecycle instead of an ambient mutable global.
type connector struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
}

var conn connector

// Init constructs the shared pool exactly once. Subsequent calls return the
// existing pool regardless of the arguments passed.
func Init(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.pool != nil {
		return conn.pool, nil
	}

	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, err
	}
	conn.pool = pool
	return pool, nil
}

// Get returns the shared pool, or an error if Init has not been called.
func Get() (*pgxpool.Pool, error) {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	return conn.pool, nil
}

// Shutdown closes the shared pool. Safe to call multiple times; after
// Shutdown, Init constructs a fresh pool.
func Shutdown() {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.pool != nil {
		conn.pool.Close()
		conn.pool = nil
	}
}
