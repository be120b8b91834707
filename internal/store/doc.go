// Package store implements the data access layer for the dispatch agent.
//
// This package provides persistent storage using DuckDB: worker
// registrations, job history, and the live Dispatch configuration. The
// dispatcher's in-memory queue and pool are the system of truth for
// anything still pending or running; Store is the system of record for
// completed history and keeps a copy of worker registrations and config.
// Workers and config are written here but not loaded back at startup.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────┬─────────────────────┬─────────────────────────┤
//	│   ConfigStore    │     WorkerStore     │        JobStore         │
//	│        ▼         │          ▼          │            ▼            │
//	│      config      │       workers       │          jobs           │
//	└─────────────────┴─────────────────────┴─────────────────────────┘
//
// # Tables
//
// Created by local migrations (internal/store/migrations):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  config            │  Dispatch tunables, one row per field       │
//	│  workers           │  Registered worker endpoints                │
//	│  jobs              │  Job history (payload, result, timestamps)  │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	NewStore(db)
//	    └── Initializes ConfigStore/WorkerStore/JobStore with a QueryInterceptor
//
//	Store.Migrate(ctx)
//	    └── migrations.Run() → creates config, workers, jobs
//
// # ConfigStore
//
// Persists the live Dispatch config as one JSON-encoded value per field,
// mirroring how the Python original's database.save_config/load_config
// store each CenterConfig field as its own row rather than one JSON blob.
//
// Methods:
//   - Load(ctx) → config.Dispatch, filling any unset field with its default
//   - Save(ctx, config.Dispatch) → error (one UPSERT per field)
//
// # WorkerStore
//
// Persists worker registration (identity, URL, backend, enabled flag,
// counters). Live status is never persisted: it is pool.Pool's
// responsibility to re-derive status via a health probe on startup.
//
// # JobStore
//
// Persists job history with a payload/result JSON column each. Uses the
// same functional-options List/Count pattern as the teacher's VMStore:
//
//	jobs, err := store.Job().List(ctx,
//	    store.ByStatus("failed", "timeout"),
//	    store.WithNewestFirst(),
//	    store.WithLimit(50),
//	    store.WithOffset(0),
//	)
//
// # QueryInterceptor
//
// All database operations are wrapped with a QueryInterceptor that provides
// debug logging for all queries, so individual stores never log SQL
// themselves.
//
// Logged operations:
//   - QueryRowContext
//   - QueryContext
//   - ExecContext
package store
