package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"libhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, userID string, libraryID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_libraries (user_id, library_id)
		VALUES (?, ?)
	`, userID, libraryID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID string, libraryID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_libraries
		WHERE user_id = ? AND library_id = ?
	`, userID, libraryID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Exists(ctx context.Context, userID string, libraryID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM user_libraries
		WHERE user_id = ? AND library_id = ?
	`, userID, libraryID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}

// FavoriteLibrary is one saved library joined with its registry record.
type FavoriteLibrary struct {
	Library models.LibraryRecord `json:"library"`
	SavedAt time.Time            `json:"saved_at"`
}

func (r *Repo) List(ctx context.Context, userID string) ([]FavoriteLibrary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.id, l.nlss_code, l.d4l_code, l.name, l.address, l.tel, l.homepage,
		       l.latitude, l.longitude, f.created_at
		FROM user_libraries f
		JOIN libraries l ON l.id = f.library_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]FavoriteLibrary, 0)
	for rows.Next() {
		var fav FavoriteLibrary
		var d4l sql.NullInt64
		var address, tel, homepage sql.NullString

		rec := &fav.Library
		if err := rows.Scan(&rec.ID, &rec.NlssCode, &d4l, &rec.Name, &address, &tel, &homepage,
			&rec.Latitude, &rec.Longitude, &fav.SavedAt); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		if d4l.Valid {
			code := d4l.Int64
			rec.D4LCode = &code
		}
		rec.Address = address.String
		rec.Tel = tel.String
		rec.Homepage = homepage.String
		out = append(out, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
