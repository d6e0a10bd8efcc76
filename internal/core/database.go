// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/steamybeans/api/internal/config"
)

const connMaxIdleTime = 30 * time.Minute

type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
	pool   *poolCounters
}

func NewDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	appName string,
) (*Database, error) {
	pool := &poolCounters{}

	opts := options.Client().
		ApplyURI(cfg.URI()).
		SetAppName(appName).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxConnIdleTime(jitteredDuration(connMaxIdleTime)).
		SetPoolMonitor(&event.PoolMonitor{Event: pool.observe})

	if cfg.OperationTimeout > 0 {
		opts.SetTimeout(cfg.OperationTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		//nolint:errcheck // cleanup on connection failure
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{
		Client: client,
		DB:     client.Database(cfg.Name),
		pool:   pool,
	}, nil
}

func (d *Database) Close(ctx context.Context) error {
	if d.Client == nil {
		return nil
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return d.Client.Disconnect(closeCtx)
}

func (d *Database) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.Client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func (d *Database) Collection(name string) *mongo.Collection {
	return d.DB.Collection(name)
}

type PoolStats struct {
	Open           int64
	InUse          int64
	CheckoutFailed int64
	Cleared        int64
}

func (d *Database) Stats() PoolStats {
	if d.pool == nil {
		return PoolStats{}
	}
	return d.pool.snapshot()
}

type poolCounters struct {
	open           atomic.Int64
	inUse          atomic.Int64
	checkoutFailed atomic.Int64
	cleared        atomic.Int64
}

func (p *poolCounters) observe(e *event.PoolEvent) {
	switch e.Type {
	case event.ConnectionCreated:
		p.open.Add(1)
	case event.ConnectionClosed:
		p.open.Add(-1)
	case event.ConnectionCheckedOut:
		p.inUse.Add(1)
	case event.ConnectionCheckedIn:
		p.inUse.Add(-1)
	case event.ConnectionCheckOutFailed:
		p.checkoutFailed.Add(1)
	case event.ConnectionPoolCleared:
		p.cleared.Add(1)
	}
}

func (p *poolCounters) snapshot() PoolStats {
	return PoolStats{
		Open:           p.open.Load(),
		InUse:          p.inUse.Load(),
		CheckoutFailed: p.checkoutFailed.Load(),
		Cleared:        p.cleared.Load(),
	}
}

func jitteredDuration(base time.Duration) time.Duration {
	//nolint:gosec // G404: non-security-sensitive jitter for connection pool
	jitter := time.Duration(rand.Int64N(int64(base / 7)))
	return base + jitter
}
