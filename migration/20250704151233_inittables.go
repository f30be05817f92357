package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTables, downInitTables)
}

func upInitTables(ctx context.Context, tx *sql.Tx) error {
	// Create water_config table (singleton row, id fixed at 1)
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE water_config (
			id INT PRIMARY KEY,
			bottle_price NUMERIC(10,2) NOT NULL,
			bottle_count INT NOT NULL,
			current_month VARCHAR(64),
			is_month_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_amount_updated BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Seed the singleton so the app never races first-write provisioning
	_, err = tx.ExecContext(ctx, `
		INSERT INTO water_config (id, bottle_price, bottle_count, current_month)
		VALUES (1, 0, 0, NULL);
	`)
	if err != nil {
		return err
	}

	// Create people table
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE people (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			avatar VARCHAR(1024),
			phone VARCHAR(32),
			has_paid BOOLEAN NOT NULL DEFAULT FALSE,
			receipt VARCHAR(1024),
			last_payment_month VARCHAR(64),
			pending_amount BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Create payments table (append-only log, seq preserves insertion order)
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE payments (
			id UUID PRIMARY KEY,
			person_id UUID NOT NULL,
			seq BIGSERIAL,
			date TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			amount BIGINT NOT NULL,
			month VARCHAR(64) NOT NULL,
			bottle_count INT NOT NULL DEFAULT 0,
			receipt VARCHAR(1024),
			admin_edited_amount BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_payments_person
				FOREIGN KEY(person_id)
				REFERENCES people(id)
				ON UPDATE CASCADE
				ON DELETE CASCADE
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_payments_person_id ON payments(person_id);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_payments_person_id_month ON payments(person_id, month);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS payments;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS people;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS water_config;`)
	if err != nil {
		return err
	}

	return nil
}
