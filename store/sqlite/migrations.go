package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the restro store (SQLite).
var Migrations = migrate.NewGroup("restro")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_restro_tenants",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_tenants (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    slug          TEXT NOT NULL DEFAULT '',
    currency      TEXT NOT NULL DEFAULT 'mzn',
    plan          TEXT NOT NULL DEFAULT 'STARTER',
    trial_ends_at TEXT,
    is_demo       INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_restro_tenants_slug ON restro_tenants (slug);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS restro_tenants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_restro_subscriptions",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_subscriptions (
    id                   TEXT PRIMARY KEY,
    tenant_id            TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    provider_id          TEXT NOT NULL,
    plan                 TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'incomplete',
    current_period_start TEXT,
    current_period_end   TEXT,
    canceled_at          TEXT,
    created_at           TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_restro_subs_provider ON restro_subscriptions (provider_id);
CREATE INDEX IF NOT EXISTS idx_restro_subs_tenant ON restro_subscriptions (tenant_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS restro_subscriptions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_restro_catalog",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_categories (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS restro_products (
    id                       TEXT PRIMARY KEY,
    tenant_id                TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    category_id              TEXT,
    name                     TEXT NOT NULL DEFAULT '',
    description              TEXT NOT NULL DEFAULT '',
    price_amount             INTEGER NOT NULL DEFAULT 0,
    price_currency           TEXT NOT NULL DEFAULT 'mzn',
    is_available             INTEGER NOT NULL DEFAULT 1,
    preparation_time_minutes INTEGER NOT NULL DEFAULT 0,
    image_url                TEXT NOT NULL DEFAULT '',
    created_at               TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at               TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_restro_categories_tenant ON restro_categories (tenant_id);
CREATE INDEX IF NOT EXISTS idx_restro_products_tenant ON restro_products (tenant_id, category_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS restro_products;
DROP TABLE IF EXISTS restro_categories;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_restro_tables",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_tables (
    id               TEXT PRIMARY KEY,
    tenant_id        TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    number           INTEGER NOT NULL,
    capacity         INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'AVAILABLE',
    reservation_name TEXT NOT NULL DEFAULT '',
    reservation_time TEXT,
    created_at       TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_restro_tables_number ON restro_tables (tenant_id, number);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS restro_tables`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_restro_orders",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_orders (
    id               TEXT PRIMARY KEY,
    tenant_id        TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    type             TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'PENDING',
    payment_status   TEXT NOT NULL DEFAULT 'PENDING',
    payment_method   TEXT NOT NULL DEFAULT '',
    total_amount     INTEGER NOT NULL DEFAULT 0,
    total_currency   TEXT NOT NULL DEFAULT 'mzn',
    table_id         TEXT,
    customer_id      TEXT NOT NULL DEFAULT '',
    customer_name    TEXT NOT NULL DEFAULT '',
    customer_phone   TEXT NOT NULL DEFAULT '',
    delivery_address TEXT NOT NULL DEFAULT '',
    items            TEXT NOT NULL DEFAULT '[]',
    created_at       TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_restro_orders_tenant ON restro_orders (tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_restro_orders_status ON restro_orders (tenant_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS restro_orders`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_restro_ingredients",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restro_ingredients (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL REFERENCES restro_tenants (id) ON DELETE CASCADE,
    name            TEXT NOT NULL DEFAULT '',
    unit            TEXT NOT NULL DEFAULT 'KG',
    current_stock   TEXT NOT NULL DEFAULT '0',
    min_stock_alert TEXT NOT NULL DEFAULT '0',
    cost_per_unit   TEXT NOT NULL DEFAULT '0',
    last_restocked  TEXT NOT NULL DEFAULT (datetime('now')),
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_restro_ingredients_tenant ON restro_ingredients (tenant_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS restro_ingredients`)
				return err
			},
		},
	)
}
