package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddCreditAndRolloverMarker, downAddCreditAndRolloverMarker)
}

func upAddCreditAndRolloverMarker(ctx context.Context, tx *sql.Tx) error {
	// Overpayments are held as credit against future dues
	_, err := tx.ExecContext(ctx, `ALTER TABLE people ADD COLUMN credit_amount BIGINT NOT NULL DEFAULT 0;`)
	if err != nil {
		return err
	}

	// Version guard so an interrupted rollover is detected instead of
	// silently reapplied
	_, err = tx.ExecContext(ctx, `ALTER TABLE water_config ADD COLUMN rollover_version BIGINT NOT NULL DEFAULT 0;`)
	if err != nil {
		return err
	}

	return nil
}

func downAddCreditAndRolloverMarker(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `ALTER TABLE water_config DROP COLUMN IF EXISTS rollover_version;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `ALTER TABLE people DROP COLUMN IF EXISTS credit_amount;`)
	if err != nil {
		return err
	}

	return nil
}
