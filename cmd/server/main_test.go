package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-http-governance/internal/accesslog"
	"github.com/tbourn/go-http-governance/internal/config"
	"github.com/tbourn/go-http-governance/internal/registry"
)

func TestNewSink(t *testing.T) {
	lg := zerolog.New(&bytes.Buffer{})

	if _, ok := newSink("log", nil, lg).(accesslog.LogHandler); !ok {
		t.Fatalf("log sink must be a LogHandler")
	}
	if _, ok := newSink("db", nil, lg).(accesslog.StoreHandler); !ok {
		t.Fatalf("db sink must be a StoreHandler")
	}
	if m, ok := newSink("both", nil, lg).(accesslog.Multi); !ok || len(m) != 2 {
		t.Fatalf("both sink must fan out to two handlers, got %#v", m)
	}
	if h := newSink("none", nil, lg); h != nil {
		t.Fatalf("none sink must be nil, got %#v", h)
	}
}

func TestNewOverloads_MemoryBackend(t *testing.T) {
	cfg := config.Config{Governance: config.GovernanceConfig{OverloadBackend: "memory"}}
	store, closeFn, err := newOverloads(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*registry.Overloads); !ok {
		t.Fatalf("memory backend must be *registry.Overloads, got %T", store)
	}

	store.Register("/x/1", 1, time.Hour)
	if ok, _ := store.Allow(context.Background(), "/x/1"); !ok {
		t.Fatalf("first admission must pass")
	}
	if ok, _ := store.Allow(context.Background(), "/x/1"); ok {
		t.Fatalf("second admission must be rejected")
	}
}

func TestNewOverloads_RedisUnreachable(t *testing.T) {
	cfg := config.Config{
		Governance: config.GovernanceConfig{OverloadBackend: "redis"},
		Redis:      config.RedisConfig{Addr: "127.0.0.1:1"},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := newOverloads(ctx, cfg); err == nil {
		t.Fatalf("expected ping failure against a closed port")
	}
}

func TestOpenStore_MigratesSchema(t *testing.T) {
	cfg := config.Config{DBPath: t.TempDir() + "/governance.db"}
	db, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if !db.Migrator().HasTable("access_logs") {
		t.Fatalf("access_logs table missing after migration")
	}
}
