package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresConnection opens a pooled connection to PostgreSQL and verifies it
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the tables if they do not exist yet
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS groups (
		id          UUID PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description TEXT,
		created_by  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		group_id  UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL,
		user_name VARCHAR(50) NOT NULL,
		role      VARCHAR(16) NOT NULL DEFAULT 'MEMBER',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id            UUID PRIMARY KEY,
		group_id      UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		paid_by       TEXT NOT NULL,
		amount        NUMERIC(12,2) NOT NULL,
		description   VARCHAR(200) NOT NULL,
		category      VARCHAR(32) NOT NULL DEFAULT 'other',
		split_type    VARCHAR(16) NOT NULL DEFAULT 'equal',
		expense_date  DATE NOT NULL DEFAULT CURRENT_DATE,
		notes         TEXT,
		is_settlement BOOLEAN NOT NULL DEFAULT FALSE,
		created_by    TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_group_date ON expenses(group_id, expense_date DESC)`,
	`CREATE TABLE IF NOT EXISTS expense_participants (
		expense_id UUID NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		amount     NUMERIC(12,2) NOT NULL,
		position   INT NOT NULL DEFAULT 0,
		PRIMARY KEY (expense_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           UUID PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		group_id     UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		type         VARCHAR(32) NOT NULL,
		message      TEXT NOT NULL,
		is_read      BOOLEAN NOT NULL DEFAULT FALSE,
		expense_id   UUID REFERENCES expenses(id) ON DELETE SET NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS recurring_expenses (
		id             UUID PRIMARY KEY,
		group_id       UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		description    VARCHAR(200) NOT NULL,
		default_amount NUMERIC(12,2) NOT NULL,
		category       VARCHAR(32) NOT NULL DEFAULT 'other',
		split_type     VARCHAR(16) NOT NULL DEFAULT 'equal',
		paid_by        TEXT NOT NULL,
		created_by     TEXT NOT NULL,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS recurring_participants (
		recurring_id UUID NOT NULL REFERENCES recurring_expenses(id) ON DELETE CASCADE,
		user_id      TEXT NOT NULL,
		percentage   NUMERIC(5,2),
		amount       NUMERIC(12,2),
		position     INT NOT NULL DEFAULT 0,
		PRIMARY KEY (recurring_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recurring_confirmations (
		id           UUID PRIMARY KEY,
		group_id     UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		recurring_id UUID NOT NULL REFERENCES recurring_expenses(id) ON DELETE CASCADE,
		month        VARCHAR(7) NOT NULL,
		amount       NUMERIC(12,2) NOT NULL,
		expense_id   UUID NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		confirmed_by TEXT NOT NULL,
		confirmed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (recurring_id, month)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recurring_confirmations_month ON recurring_confirmations(group_id, month)`,
}
