package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
)

// GetSettings returns the persisted settings row. found is false when no
// row has been written yet.
func GetSettings(ctx context.Context, db *sql.DB) (p chem.SettingsPayload, found bool, err error) {
	query := `
		SELECT theme_mode, detailed_report, auto_fill_starting_materials, export_format
		FROM settings
		WHERE id = 1
	`

	var theme, format string
	err = db.QueryRowContext(ctx, query).Scan(&theme, &p.DetailedReport, &p.AutoFillStartingMaterials, &format)
	if err == sql.ErrNoRows {
		return chem.SettingsPayload{}, false, nil
	}
	if err != nil {
		return chem.SettingsPayload{}, false, errors.NewInternal(err)
	}
	p.ThemeMode = chem.ThemeMode(theme)
	p.ExportFormat = chem.ExportFormat(format)
	return p, true, nil
}

// UpsertSettings writes the single settings row.
func UpsertSettings(ctx context.Context, db *sql.DB, p chem.SettingsPayload) error {
	query := `
		INSERT INTO settings (
			id, theme_mode, detailed_report, auto_fill_starting_materials, export_format, updated_at
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			theme_mode = excluded.theme_mode,
			detailed_report = excluded.detailed_report,
			auto_fill_starting_materials = excluded.auto_fill_starting_materials,
			export_format = excluded.export_format,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		string(p.ThemeMode), p.DetailedReport, p.AutoFillStartingMaterials, string(p.ExportFormat),
		time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListElements returns every atomic-mass row in table order.
func ListElements(ctx context.Context, db *sql.DB) ([]chem.Element, error) {
	query := `
		SELECT name, symbol, atomic_mass
		FROM elements
		ORDER BY position ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	elements := []chem.Element{}
	for rows.Next() {
		var el chem.Element
		if err := rows.Scan(&el.Name, &el.Symbol, &el.AtomicMass); err != nil {
			return nil, errors.NewInternal(err)
		}
		elements = append(elements, el)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return elements, nil
}

// ReplaceElements swaps the whole atomic-mass table in one transaction.
// Row order becomes the position column.
func ReplaceElements(ctx context.Context, db *sql.DB, elements []chem.Element) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM elements"); err != nil {
		return errors.NewInternal(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (symbol, name, atomic_mass, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for i, el := range elements {
		if _, err := stmt.ExecContext(ctx, el.Symbol, el.Name, el.AtomicMass, i); err != nil {
			if isUniqueConstraintError(err) {
				return errors.NewInvalidRequest(fmt.Sprintf("duplicate element symbol: %s", el.Symbol))
			}
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// CountElements returns the number of atomic-mass rows.
func CountElements(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM elements").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
