package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

const (
	selectSnippets = `
		SELECT id, title, description, language, author, pub_date, visit_count, lat, lng
		FROM snippets`
	// Same order as domain.LessID.
	orderSnippets = `
		ORDER BY (id !~ '^[0-9]+$'), CASE WHEN id ~ '^[0-9]+$' THEN length(id) END, id COLLATE "C"`
)

// SnippetRepo implements ports.SnippetStore with pgx.
type SnippetRepo struct {
	db *DB
}

// NewSnippetRepo creates a new SnippetRepo.
func NewSnippetRepo(db *DB) *SnippetRepo {
	return &SnippetRepo{db: db}
}

// Ping is the readiness probe of the stub backend.
func (r *SnippetRepo) Ping(ctx context.Context) error { return r.db.Ping(ctx) }

// listQuery builds the feed query, filtered to bbox when it is non-nil.
func listQuery(bbox *domain.Bounds) (string, []any) {
	if bbox == nil {
		return selectSnippets + orderSnippets, nil
	}
	return selectSnippets + `
		WHERE lat BETWEEN $1 AND $2 AND lng BETWEEN $3 AND $4` + orderSnippets,
		[]any{bbox.South, bbox.North, bbox.West, bbox.East}
}

// List returns every snippet, or those inside bbox.
func (r *SnippetRepo) List(ctx context.Context, bbox *domain.Bounds) ([]domain.PointRecord, error) {
	q, args := listQuery(bbox)
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	defer rows.Close()

	var out []domain.PointRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one snippet by id.
func (r *SnippetRepo) Get(ctx context.Context, id string) (*domain.PointRecord, error) {
	rec, err := scanRecord(r.db.Pool.QueryRow(ctx, selectSnippets+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnippetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateLocation moves an unlocked snippet.
func (r *SnippetRepo) UpdateLocation(ctx context.Context, id string, at domain.LatLng) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE snippets SET lat = $2, lng = $3, updated_at = now()
		WHERE id = $1 AND NOT locked
	`, id, at.Lat, at.Lng)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrLocked(ctx, id)
	}
	return nil
}

// Delete removes an unlocked snippet.
func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM snippets WHERE id = $1 AND NOT locked`, id)
	if err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrLocked(ctx, id)
	}
	return nil
}

// missOrLocked explains why a guarded mutation touched no row.
func (r *SnippetRepo) missOrLocked(ctx context.Context, id string) error {
	var locked bool
	err := r.db.Pool.QueryRow(ctx, `SELECT locked FROM snippets WHERE id = $1`, id).Scan(&locked)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrSnippetNotFound
	case err != nil:
		return err
	case locked:
		return domain.ErrSnippetLocked
	default:
		return fmt.Errorf("snippet %s changed concurrently", id)
	}
}

// Seed upserts records using pgx.Batch.
func (r *SnippetRepo) Seed(ctx context.Context, records []domain.PointRecord) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		var lat, lng *float64
		if rec.HasPoint {
			lat, lng = &rec.Position.Lat, &rec.Position.Lng
		}
		batch.Queue(`
			INSERT INTO snippets (id, title, description, language, author, pub_date, visit_count, lat, lng)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, description = EXCLUDED.description,
			    language = EXCLUDED.language, author = EXCLUDED.author,
			    pub_date = EXCLUDED.pub_date, visit_count = EXCLUDED.visit_count,
			    lat = EXCLUDED.lat, lng = EXCLUDED.lng, updated_at = now()
		`, rec.ID, rec.Title, rec.Description, rec.Language, rec.Author, rec.PubDate, rec.VisitCount, lat, lng)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Lock marks ids so that their mutations fail with domain.ErrSnippetLocked.
func (r *SnippetRepo) Lock(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx, `UPDATE snippets SET locked = TRUE WHERE id = ANY($1)`, ids)
	return err
}

func scanRecord(row pgx.Row) (domain.PointRecord, error) {
	var (
		rec      domain.PointRecord
		lat, lng *float64
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Language, &rec.Author,
		&rec.PubDate, &rec.VisitCount, &lat, &lng); err != nil {
		return rec, err
	}
	if lat != nil && lng != nil {
		rec.Position = domain.LatLng{Lat: *lat, Lng: *lng}
		rec.HasPoint = true
	}
	return rec, nil
}
