package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"reelsync/internal/media"
)

const titleColumns = "id, is_movie, primary_title, genres, start_year, end_year, num_votes, imdb_rating, first_world, needs_update"

// UpsertTitles writes titles in configured-size batches, one transaction per
// batch. Existing rows are overwritten with the latest catalog values.
func (s *Store) UpsertTitles(ctx context.Context, titles []media.Title) error {
	for start := 0; start < len(titles); start += s.batchSize {
		end := start + s.batchSize
		if end > len(titles) {
			end = len(titles)
		}
		if err := s.upsertTitleBatch(ctx, titles[start:end]); err != nil {
			return storeErr(fmt.Sprintf("upsert titles [%d:%d]", start, end), err)
		}
	}
	return nil
}

func (s *Store) upsertTitleBatch(ctx context.Context, titles []media.Title) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO titles (`+titleColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            is_movie = excluded.is_movie,
            primary_title = excluded.primary_title,
            genres = excluded.genres,
            start_year = excluded.start_year,
            end_year = excluded.end_year,
            num_votes = excluded.num_votes,
            imdb_rating = excluded.imdb_rating,
            needs_update = excluded.needs_update`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, title := range titles {
		genres, err := json.Marshal(title.Genres)
		if err != nil {
			return fmt.Errorf("encode genres for %d: %w", title.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			title.ID,
			title.IsMovie,
			title.PrimaryTitle,
			string(genres),
			title.StartYear,
			nullableInt(title.EndYear),
			title.NumVotes,
			title.IMDbRating,
			nullableBool(title.FirstWorld),
			title.NeedsUpdate,
		); err != nil {
			return fmt.Errorf("upsert title %d: %w", title.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AllTitles returns the full persisted title snapshot.
func (s *Store) AllTitles(ctx context.Context) ([]media.Title, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+titleColumns+" FROM titles ORDER BY id")
	if err != nil {
		return nil, storeErr("fetch titles", err)
	}
	defer rows.Close()

	var titles []media.Title
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, storeErr("scan title", err)
		}
		titles = append(titles, *title)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate titles", err)
	}
	return titles, nil
}

// TitlesNeedingUpdate returns ids of titles flagged for review sync. When
// requireFirstWorld is set, only titles with a positive classification
// qualify.
func (s *Store) TitlesNeedingUpdate(ctx context.Context, requireFirstWorld bool) ([]int64, error) {
	query := "SELECT id FROM titles WHERE needs_update = 1"
	if requireFirstWorld {
		query += " AND first_world = 1"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("fetch titles needing update", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan title id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate title ids", err)
	}
	return ids, nil
}

// TitlesMissingFirstWorld returns ids of titles not yet classified.
func (s *Store) TitlesMissingFirstWorld(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM titles WHERE first_world IS NULL ORDER BY id")
	if err != nil {
		return nil, storeErr("fetch unclassified titles", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan title id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate title ids", err)
	}
	return ids, nil
}

// ClearNeedsUpdate clears the needs-update flag for one title.
func (s *Store) ClearNeedsUpdate(ctx context.Context, id int64) error {
	return s.SetNeedsUpdate(ctx, id, false)
}

// TitleSyncView binds the first-world gating choice so the store satisfies
// the sync package's title boundary.
type TitleSyncView struct {
	store             *Store
	requireFirstWorld bool
}

// SyncTitles returns a view of the title table scoped to review sync.
func (s *Store) SyncTitles(requireFirstWorld bool) *TitleSyncView {
	return &TitleSyncView{store: s, requireFirstWorld: requireFirstWorld}
}

func (v *TitleSyncView) TitlesNeedingUpdate(ctx context.Context) ([]int64, error) {
	return v.store.TitlesNeedingUpdate(ctx, v.requireFirstWorld)
}

func (v *TitleSyncView) ClearNeedsUpdate(ctx context.Context, id int64) error {
	return v.store.ClearNeedsUpdate(ctx, id)
}

// SetNeedsUpdate sets or clears the needs-update flag for one title.
func (s *Store) SetNeedsUpdate(ctx context.Context, id int64, needsUpdate bool) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE titles SET needs_update = ? WHERE id = ?", needsUpdate, id); err != nil {
		return storeErr(fmt.Sprintf("set needs_update for %d", id), err)
	}
	return nil
}

// SetFirstWorld records the first-world classification for one title.
func (s *Store) SetFirstWorld(ctx context.Context, id int64, firstWorld bool) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE titles SET first_world = ? WHERE id = ?", firstWorld, id); err != nil {
		return storeErr(fmt.Sprintf("set first_world for %d", id), err)
	}
	return nil
}

func scanTitle(scanner interface{ Scan(dest ...any) error }) (*media.Title, error) {
	var (
		title      media.Title
		genresJSON string
		endYear    sql.NullInt64
		firstWorld sql.NullBool
	)
	if err := scanner.Scan(
		&title.ID,
		&title.IsMovie,
		&title.PrimaryTitle,
		&genresJSON,
		&title.StartYear,
		&endYear,
		&title.NumVotes,
		&title.IMDbRating,
		&firstWorld,
		&title.NeedsUpdate,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(genresJSON), &title.Genres); err != nil {
		return nil, fmt.Errorf("decode genres for %d: %w", title.ID, err)
	}
	if endYear.Valid {
		title.EndYear = int(endYear.Int64)
	}
	if firstWorld.Valid {
		value := firstWorld.Bool
		title.FirstWorld = &value
	}
	return &title, nil
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableBool(value *bool) any {
	if value == nil {
		return nil
	}
	return *value
}
