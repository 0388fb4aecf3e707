package neo4j

import (
	"context"
	"fmt"
	"time"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client owns a Neo4j driver and the database sessions are opened against.
type Client struct {
	Driver   neo4jv5.DriverWithContext
	Database string
}

// NewClientParams configures a Client. Empty User defaults to "neo4j";
// empty Database selects the server default.
type NewClientParams struct {
	URI         string
	User        string
	Password    string
	Database    string
	MaxPoolSize int
	Timeout     time.Duration
}

// NewClient creates a driver and verifies that the server is reachable.
func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	if params.URI == "" {
		return nil, fmt.Errorf("neo4j: uri is required")
	}
	user := params.User
	if user == "" {
		user = "neo4j"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPool := params.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	driver, err := neo4jv5.NewDriverWithContext(params.URI, neo4jv5.BasicAuth(user, params.Password, ""), func(cfg *neo4jv5.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(vctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{Driver: driver, Database: params.Database}, nil
}

func (c *Client) session(ctx context.Context, mode neo4jv5.AccessMode) neo4jv5.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4jv5.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
}

// Close releases the driver. It is safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
