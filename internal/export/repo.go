package export

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/cardlinks/internal/linkservice"
	"github.com/starford/cardlinks/internal/models"
)

// WriteSnapshot replaces everything stored for run with snap in one transaction.
func (db *DB) WriteSnapshot(ctx context.Context, run string, failures int, snap linkservice.Snapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE name = ?`, run); err != nil {
		return fmt.Errorf("export: clear run: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (name, failures, exported_at) VALUES (?, ?, ?)`,
		run, failures, time.Now().UTC()); err != nil {
		return fmt.Errorf("export: insert run: %w", err)
	}

	occupied := make(map[string]struct{}, len(snap.Occupied))
	for _, id := range snap.Occupied {
		occupied[id] = struct{}{}
	}

	cardStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (run, id, number, issuer, state, occupied) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare card insert: %w", err)
	}
	defer cardStmt.Close()
	for _, c := range snap.Cards {
		_, occ := occupied[c.ID]
		if _, err := cardStmt.ExecContext(ctx, run, c.ID, c.Number, c.Issuer, c.State, occ); err != nil {
			return fmt.Errorf("export: insert card %s: %w", c.ID, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO card_links (run, group_id, position, primary_card_id, linked_card_id, reason)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	for head, chain := range snap.Chains {
		for pos, l := range chain {
			if _, err := linkStmt.ExecContext(ctx, run, head, pos, l.PrimaryCardID, l.LinkedCardID, l.Reason); err != nil {
				return fmt.Errorf("export: insert link %s->%s: %w", l.PrimaryCardID, l.LinkedCardID, err)
			}
		}
	}

	return tx.Commit()
}

// Chain returns the exported chain under head for run, head first.
func (db *DB) Chain(ctx context.Context, run, head string) ([]models.CardLink, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT primary_card_id, linked_card_id, group_id, reason
		FROM card_links WHERE run = ? AND group_id = ?
		ORDER BY position`, run, head)
	if err != nil {
		return nil, fmt.Errorf("export: chain: %w", err)
	}
	defer rows.Close()

	var out []models.CardLink
	for rows.Next() {
		var l models.CardLink
		if err := rows.Scan(&l.PrimaryCardID, &l.LinkedCardID, &l.GroupID, &l.Reason); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Runs returns the exported run names with their failure counts.
func (db *DB) Runs(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name, failures FROM runs`)
	if err != nil {
		return nil, fmt.Errorf("export: runs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var failures int
		if err := rows.Scan(&name, &failures); err != nil {
			return nil, err
		}
		out[name] = failures
	}
	return out, rows.Err()
}

// OccupiedCards returns the ids of cards exported as occupied for run.
func (db *DB) OccupiedCards(ctx context.Context, run string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM cards WHERE run = ? AND occupied = 1 ORDER BY id`, run)
	if err != nil {
		return nil, fmt.Errorf("export: occupied cards: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
