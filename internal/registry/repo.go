package registry

import (
	"context"
	"database/sql"
	"fmt"

	"libhub/internal/geo"
	"libhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const recordColumns = `id, nlss_code, d4l_code, name, address, tel, homepage, latitude, longitude`

func scanRecord(scan func(dest ...any) error) (models.LibraryRecord, error) {
	var rec models.LibraryRecord
	var d4l sql.NullInt64
	var address, tel, homepage sql.NullString

	err := scan(&rec.ID, &rec.NlssCode, &d4l, &rec.Name, &address, &tel, &homepage, &rec.Latitude, &rec.Longitude)
	if err != nil {
		return rec, err
	}
	if d4l.Valid {
		code := d4l.Int64
		rec.D4LCode = &code
	}
	rec.Address = address.String
	rec.Tel = tel.String
	rec.Homepage = homepage.String
	return rec, nil
}

func (r *Repo) FindAll(ctx context.Context) ([]models.LibraryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM libraries
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("find all libraries: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.LibraryRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM libraries
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get library %d: %w", id, err)
	}
	return &rec, nil
}

func (r *Repo) FindByPrimaryCode(ctx context.Context, code string) (*models.LibraryRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM libraries
		WHERE nlss_code = ?
	`, code)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find library by primary code %s: %w", code, err)
	}
	return &rec, nil
}

func (r *Repo) FindBySecondaryCode(ctx context.Context, code int64) (*models.LibraryRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM libraries
		WHERE d4l_code = ?
	`, code)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find library by secondary code %d: %w", code, err)
	}
	return &rec, nil
}

// List returns a page of libraries, optionally filtered by a substring
// of the name, together with the total count for the filter.
func (r *Repo) List(ctx context.Context, search string, limit, offset int) ([]models.LibraryRecord, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	var countErr error
	if search == "" {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM libraries
		`).Scan(&total)
	} else {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM libraries WHERE name LIKE ?
		`, "%"+search+"%").Scan(&total)
	}
	if countErr != nil {
		return nil, 0, fmt.Errorf("count libraries: %w", countErr)
	}

	var rows *sql.Rows
	var err error
	if search == "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT `+recordColumns+`
			FROM libraries
			ORDER BY name
			LIMIT ? OFFSET ?
		`, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT `+recordColumns+`
			FROM libraries
			WHERE name LIKE ?
			ORDER BY name
			LIMIT ? OFFSET ?
		`, "%"+search+"%", limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	out, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindInBoundingBox returns every library inside the latitude/longitude
// rectangle. The query rides the (latitude, longitude) index; the exact
// radius check happens in the caller.
func (r *Repo) FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]models.LibraryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM libraries
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("find libraries in box: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// InsertBatch inserts all records in a single transaction. It is all or
// nothing: any failure, including a unique-code violation, rolls the
// whole batch back.
func (r *Repo) InsertBatch(ctx context.Context, records []models.LibraryRecord) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO libraries (nlss_code, d4l_code, name, address, tel, homepage, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var d4l any
		if rec.HasD4LCode() {
			d4l = *rec.D4LCode
		}
		if _, err := stmt.ExecContext(
			ctx,
			rec.NlssCode,
			d4l,
			rec.Name,
			rec.Address,
			rec.Tel,
			rec.Homepage,
			rec.Latitude,
			rec.Longitude,
		); err != nil {
			return fmt.Errorf("insert library %s: %w", rec.NlssCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetSecondaryCode links a secondary-source code onto a record. The
// guard on d4l_code keeps an already-linked record from being relinked.
func (r *Repo) SetSecondaryCode(ctx context.Context, id int64, code int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE libraries
		SET d4l_code = ?
		WHERE id = ? AND d4l_code IS NULL
	`, code, id)
	if err != nil {
		return fmt.Errorf("set secondary code on library %d: %w", id, err)
	}
	return nil
}

func collectRecords(rows *sql.Rows) ([]models.LibraryRecord, error) {
	out := make([]models.LibraryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
