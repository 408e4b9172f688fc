package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kbreuer/artikelstamm/internal/core/domain"
	"github.com/kbreuer/artikelstamm/internal/port"
)

const artikelColumns = `id, artikelnummer, bezeichnung, beschreibung, kategorie, lieferant,
	tags, dimension, gewicht, preis, waehrung, einheit,
	lagerbestand, min_bestand, max_bestand, aktiv, erstellt_am, geaendert_am`

const defaultSearchLimit = 100

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id int64) (*domain.Artikel, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+artikelColumns+` FROM artikel WHERE id = ?`, id)
	return scanArtikel(row)
}

func (m *MySQLAdapter) FindByNummer(ctx context.Context, nummer string) (*domain.Artikel, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+artikelColumns+` FROM artikel WHERE artikelnummer = ?`, nummer)
	return scanArtikel(row)
}

func (m *MySQLAdapter) Search(ctx context.Context, filter domain.SuchFilter) ([]*domain.Artikel, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + artikelColumns + ` FROM artikel WHERE 1=1`)
	var args []any

	if filter.Bezeichnung != "" {
		query.WriteString(" AND bezeichnung LIKE ?")
		args = append(args, "%"+filter.Bezeichnung+"%")
	}
	if filter.Kategorie != "" {
		query.WriteString(" AND kategorie = ?")
		args = append(args, filter.Kategorie)
	}
	if filter.Lieferant != "" {
		query.WriteString(" AND lieferant = ?")
		args = append(args, filter.Lieferant)
	}
	if filter.PreisMin != nil {
		query.WriteString(" AND preis >= ?")
		args = append(args, *filter.PreisMin)
	}
	if filter.PreisMax != nil {
		query.WriteString(" AND preis <= ?")
		args = append(args, *filter.PreisMax)
	}
	if filter.NurAktive == nil || *filter.NurAktive {
		query.WriteString(" AND aktiv = 1")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query.WriteString(" ORDER BY bezeichnung ASC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := m.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search artikel: %w", err)
	}
	defer rows.Close()

	var result []*domain.Artikel
	for rows.Next() {
		a, err := scanArtikel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search artikel: %w", err)
	}

	return result, nil
}

func (m *MySQLAdapter) BeginTx(ctx context.Context) (port.ArtikelTx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &MySQLTx{tx: tx}, nil
}

type MySQLTx struct {
	tx *sql.Tx
}

func (t *MySQLTx) Insert(ctx context.Context, a *domain.Artikel) (int64, error) {
	tagsJSON, dimJSON, err := marshalContainers(a)
	if err != nil {
		return 0, err
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO artikel (artikelnummer, bezeichnung, beschreibung, kategorie, lieferant,
			tags, dimension, gewicht, preis, waehrung, einheit,
			lagerbestand, min_bestand, max_bestand, aktiv, erstellt_am, geaendert_am)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Artikelnummer, a.Bezeichnung, a.Beschreibung, a.Kategorie, a.Lieferant,
		tagsJSON, dimJSON, a.Gewicht, a.Preis, a.Waehrung, a.Einheit,
		a.Lagerbestand, a.MinBestand, a.MaxBestand, a.Aktiv, a.ErstelltAm, a.GeaendertAm,
	)
	if err != nil {
		return 0, fmt.Errorf("insert artikel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert artikel: %w", err)
	}

	return id, nil
}

func (t *MySQLTx) Update(ctx context.Context, a *domain.Artikel) error {
	tagsJSON, dimJSON, err := marshalContainers(a)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE artikel
		SET artikelnummer = ?, bezeichnung = ?, beschreibung = ?, kategorie = ?, lieferant = ?,
			tags = ?, dimension = ?, gewicht = ?, preis = ?, waehrung = ?, einheit = ?,
			lagerbestand = ?, min_bestand = ?, max_bestand = ?, aktiv = ?,
			erstellt_am = ?, geaendert_am = ?
		WHERE id = ?`,
		a.Artikelnummer, a.Bezeichnung, a.Beschreibung, a.Kategorie, a.Lieferant,
		tagsJSON, dimJSON, a.Gewicht, a.Preis, a.Waehrung, a.Einheit,
		a.Lagerbestand, a.MinBestand, a.MaxBestand, a.Aktiv, a.ErstelltAm, a.GeaendertAm,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artikel: %w", err)
	}

	return nil
}

func (t *MySQLTx) LockArtikel(ctx context.Context, id int64) (*domain.Artikel, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+artikelColumns+` FROM artikel WHERE id = ? FOR UPDATE`, id)

	a, err := scanArtikel(row)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrArtikelNotFound
	}

	return a, nil
}

func (t *MySQLTx) UpdateLagerbestand(ctx context.Context, id int64, bestand int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE artikel SET lagerbestand = ?, geaendert_am = NOW() WHERE id = ?`,
		bestand, id,
	)
	if err != nil {
		return fmt.Errorf("update lagerbestand: %w", err)
	}

	return nil
}

func (t *MySQLTx) Commit() error {
	return t.tx.Commit()
}

func (t *MySQLTx) Rollback() error {
	return t.tx.Rollback()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtikel(row rowScanner) (*domain.Artikel, error) {
	var a domain.Artikel
	var tagsJSON, dimJSON []byte

	err := row.Scan(
		&a.ID, &a.Artikelnummer, &a.Bezeichnung, &a.Beschreibung, &a.Kategorie, &a.Lieferant,
		&tagsJSON, &dimJSON, &a.Gewicht, &a.Preis, &a.Waehrung, &a.Einheit,
		&a.Lagerbestand, &a.MinBestand, &a.MaxBestand, &a.Aktiv, &a.ErstelltAm, &a.GeaendertAm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan artikel: %w", err)
	}

	a.Tags = []string{}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &a.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	a.Dimension = map[string]string{}
	if len(dimJSON) > 0 {
		if err := json.Unmarshal(dimJSON, &a.Dimension); err != nil {
			return nil, fmt.Errorf("decode dimension: %w", err)
		}
	}

	return &a, nil
}

func marshalContainers(a *domain.Artikel) (tags []byte, dimension []byte, err error) {
	tags, err = json.Marshal(a.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	dimension, err = json.Marshal(a.Dimension)
	if err != nil {
		return nil, nil, fmt.Errorf("encode dimension: %w", err)
	}
	return tags, dimension, nil
}
