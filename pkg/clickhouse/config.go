package clickhouse

import (
	"time"

	"CrediScan/pkg/config"
)

type ClientOption func(*ClientConfig)

// ClientConfig is what NewClient dials with.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	UseHTTP         bool
	AsyncInsert     bool
	WaitForAsync    bool
	MaxExecTime     time.Duration
}

// WithAddr picks the server; useHTTP switches from the native protocol to HTTP.
func WithAddr(host string, port int, useHTTP bool) ClientOption {
	return func(c *ClientConfig) {
		c.Host = host
		if port > 0 {
			c.Port = port
		}
		c.UseHTTP = useHTTP
	}
}

func WithAuth(database, user, password string) ClientOption {
	return func(c *ClientConfig) {
		if database != "" {
			c.Database = database
		}
		if user != "" {
			c.User = user
		}
		c.Password = password
	}
}

func WithPool(maxOpen, maxIdle int, lifetime time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if maxOpen > 0 {
			c.MaxOpenConns = maxOpen
		}
		if maxIdle > 0 {
			c.MaxIdleConns = maxIdle
		}
		if lifetime > 0 {
			c.ConnMaxLifetime = lifetime
		}
	}
}

// WithTimeouts bounds connecting (and the startup ping) and each read.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if dial > 0 {
			c.DialTimeout = dial
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}

// WithInserts sets async_insert (and whether to wait for it) plus the server-side query limit.
func WithInserts(async, wait bool, maxExec time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = async
		c.WaitForAsync = wait
		c.MaxExecTime = maxExec
	}
}

func OptionsFromConfig(cfg *config.Config) []ClientOption {
	s := cfg.ClickHouse
	return []ClientOption{
		WithAddr(s.Host, s.Port, s.UseHTTP),
		WithAuth(s.Database, s.User, s.Password),
		WithPool(s.MaxOpenConns, s.MaxIdleConns, s.ConnMaxLifetime),
		WithTimeouts(s.DialTimeout, s.ReadTimeout),
		WithInserts(s.AsyncInsert, s.WaitForAsync, s.MaxExecutionTime),
	}
}
