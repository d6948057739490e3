package ledger

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// LoadRecord is one artifact load attempt.
type LoadRecord struct {
	ID       int64
	Artifact string
	Path     string
	Digest   string
	Status   string
	Note     string
	LoadedAt time.Time
}

// Store persists artifact load attempts across restarts.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS artifact_loads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artifact TEXT NOT NULL,
  path TEXT NOT NULL DEFAULT '',
  digest TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  loaded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS artifact_loads_by_artifact ON artifact_loads(artifact, id);
`)
	return err
}

func (s *Store) Record(ctx context.Context, r LoadRecord) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	if r.LoadedAt.IsZero() {
		r.LoadedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO artifact_loads(artifact, path, digest, status, note, loaded_at)
VALUES(?, ?, ?, ?, ?, ?);
`, r.Artifact, r.Path, r.Digest, r.Status, r.Note, r.LoadedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]LoadRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, artifact, path, digest, status, note, loaded_at
FROM artifact_loads ORDER BY id DESC LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var r LoadRecord
		if err := rows.Scan(&r.ID, &r.Artifact, &r.Path, &r.Digest, &r.Status, &r.Note, &r.LoadedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastDigest returns the most recent non-empty digest recorded for artifact.
func (s *Store) LastDigest(ctx context.Context, artifact string) (string, bool, error) {
	if s.db == nil {
		return "", false, nil
	}
	row := s.db.QueryRowContext(ctx, `
SELECT digest FROM artifact_loads
WHERE artifact=? AND digest != ''
ORDER BY id DESC LIMIT 1;
`, artifact)
	var d string
	err := row.Scan(&d)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d, true, nil
}
