package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"

	"CrediScan/pkg/config"
)

func TestBuildOptions(t *testing.T) {
	o := buildOptions(ClientConfig{
		Host:         "ch.local",
		Port:         9000,
		Database:     "crediscan",
		User:         "svc",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  30 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})

	if len(o.Addr) != 1 || o.Addr[0] != "ch.local:9000" {
		t.Fatalf("unexpected addr %v", o.Addr)
	}
	if o.Auth.Database != "crediscan" || o.Auth.Username != "svc" || o.Auth.Password != "p@ss" {
		t.Fatalf("unexpected auth %+v", o.Auth)
	}
	if o.Protocol != ch.Native {
		t.Fatalf("native protocol expected")
	}
	if o.Settings["max_execution_time"] != 30 {
		t.Fatalf("unexpected settings %v", o.Settings)
	}
	if o.Settings["async_insert"] != 1 || o.Settings["wait_for_async_insert"] != 1 {
		t.Fatalf("async insert settings missing: %v", o.Settings)
	}
}

func TestBuildOptions_HTTP(t *testing.T) {
	o := buildOptions(ClientConfig{Host: "h", Port: 8123, UseHTTP: true})
	if o.Protocol != ch.HTTP {
		t.Fatalf("expected http protocol, got %v", o.Protocol)
	}
	if _, ok := o.Settings["async_insert"]; ok {
		t.Fatalf("async insert should be off: %v", o.Settings)
	}
}

func TestNewClient_RequiresHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if _, err := NewClient(ctx); err == nil {
		t.Fatal("expected error without host")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ClickHouse.Host = "ch.local"
	cfg.ClickHouse.User = ""
	cfg.ClickHouse.MaxOpenConns = 0

	c := ClientConfig{User: "default", MaxOpenConns: 10}
	for _, o := range OptionsFromConfig(cfg) {
		o(&c)
	}
	if c.Host != "ch.local" || c.Port != 9000 || c.Database != "crediscan" {
		t.Fatalf("unexpected address %+v", c)
	}
	if c.User != "default" || c.MaxOpenConns != 10 {
		t.Fatalf("zero values should keep defaults: %+v", c)
	}
	if c.ConnMaxLifetime != 5*time.Minute || c.MaxExecTime != 30*time.Second {
		t.Fatalf("config values not applied: %+v", c)
	}
}
