package mongo

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ConnState is the lifecycle state of the shared connection handle.
type ConnState int32

const (
	StateUninitialized ConnState = iota
	StateConnecting
	StateReady
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Connection is the process-wide Mongo client handle. It is established
// lazily on first use, reused across requests while healthy, and
// re-established on the acquire after a detected disconnect. Callers
// receive it as an injected dependency; nothing reaches for a global.
type Connection struct {
	uri     string
	dbName  string
	timeout time.Duration
	logger  arbor.ILogger

	mu     sync.Mutex
	state  ConnState
	client *mongo.Client
}

// NewConnection creates an unconnected handle. No I/O happens until the
// first Database call.
func NewConnection(logger arbor.ILogger, config *common.MongoConfig) *Connection {
	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Connection{
		uri:     config.URI,
		dbName:  config.Database,
		timeout: timeout,
		logger:  logger,
		state:   StateUninitialized,
	}
}

// Database returns a handle to the configured database, establishing
// the client on first use.
func (c *Connection) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.dbName), nil
}

// acquire hands out the cached client, (re)connecting when the handle
// is uninitialized or a previous failure was observed.
func (c *Connection) acquire(ctx context.Context) (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateReady {
		return c.client, nil
	}

	c.state = StateConnecting
	c.logger.Debug().Str("database", c.dbName).Msg("Establishing MongoDB connection")

	clientOptions := options.Client().
		ApplyURI(c.uri).
		SetConnectTimeout(c.timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		c.state = StateFailed
		return nil, common.NewInfrastructureError("mongo connect", err)
	}

	// Verify the deployment is reachable within the fixed establishment
	// timeout. There are no retries; a failure surfaces to the caller.
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		c.state = StateFailed
		return nil, common.NewInfrastructureError("mongo ping", err)
	}

	c.client = client
	c.state = StateReady
	c.logger.Info().Str("database", c.dbName).Msg("MongoDB connection established")

	return client, nil
}

// ObserveError inspects a query error and drops the cached client on
// network or timeout failures so the next acquire reconnects.
func (c *Connection) ObserveError(err error) {
	if err == nil {
		return
	}
	if !mongo.IsNetworkError(err) && !mongo.IsTimeout(err) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		_ = c.client.Disconnect(context.Background())
		c.client = nil
	}
	c.state = StateFailed
	c.logger.Warn().Err(err).Msg("MongoDB connection marked unhealthy")
}

// State reports the current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ping establishes the connection if needed and verifies it.
func (c *Connection) Ping(ctx context.Context) error {
	client, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		c.ObserveError(err)
		return common.NewInfrastructureError("mongo ping", err)
	}
	return nil
}

// Close disconnects the client and resets the lifecycle.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.state = StateUninitialized
		return nil
	}

	err := c.client.Disconnect(context.Background())
	c.client = nil
	c.state = StateUninitialized
	return err
}
