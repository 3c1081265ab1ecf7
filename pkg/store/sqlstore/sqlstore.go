/*
Package sqlstore is the durable ObjectStore backend: a relational schema
over modernc.org/sqlite, the pure-Go SQLite driver. It exists so a Peer
can survive a restart without re-fetching its own history from the
network, trading Memory's simplicity for on-disk durability.

Every write path (Commit, Stash, Unstash) runs inside a single
transaction; a crash mid-commit leaves the prior state intact rather
than a half-written patch with no parent edges.
*/
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/latticewire/peerdag/pkg/patch"
	"github.com/latticewire/peerdag/pkg/store"

	_ "modernc.org/sqlite"
)

// Store is an ObjectStore backed by a SQLite database opened with the
// modernc.org/sqlite driver (registered under the "sqlite" driver name).
type Store struct {
	db *sql.DB
}

// Open opens dsn (a file path, or ":memory:" for an ephemeral store) and
// applies the schema if it is not already present.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	// The modernc.org driver does not support concurrent writers; a single
	// connection avoids SQLITE_BUSY without needing a busy_timeout dance.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open *sql.DB, applying the schema if needed. Unlike
// Open it leaves the pool's connection limits as the caller set them.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlstore: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.ObjectStore = (*Store)(nil)

func (s *Store) Heads(ctx context.Context) ([]patch.ID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash FROM st_patches
		WHERE seq_no NOT IN (SELECT child FROM st_rel)`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: heads: %w", err)
	}
	defer rows.Close()

	var heads []patch.ID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlstore: heads scan: %w", err)
		}
		id, err := patch.IDFromBytes(raw)
		if err != nil {
			return nil, err
		}
		heads = append(heads, id)
	}
	return heads, rows.Err()
}

func (s *Store) Patches(ctx context.Context, ids []patch.ID) ([]patch.Patch, error) {
	out := make([]patch.Patch, 0, len(ids))
	for _, id := range ids {
		p, ok, err := s.patchByHash(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) patchByHash(ctx context.Context, id patch.ID) (patch.Patch, bool, error) {
	var (
		authorRaw, sigRaw, payload []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT a.verification_key, p.signature, p.data
		FROM st_patches p
		JOIN st_authors a ON p.author_id = a.author_id
		WHERE p.hash = ?`, id.Bytes()).Scan(&authorRaw, &sigRaw, &payload)
	if err == sql.ErrNoRows {
		return patch.Patch{}, false, nil
	}
	if err != nil {
		return patch.Patch{}, false, fmt.Errorf("sqlstore: patch by hash: %w", err)
	}

	author, err := patch.PeerIDFromBytes(authorRaw)
	if err != nil {
		return patch.Patch{}, false, err
	}
	sig, err := patch.SignatureFromBytes(sigRaw)
	if err != nil {
		return patch.Patch{}, false, err
	}

	deps, err := s.parentsOf(ctx, id)
	if err != nil {
		return patch.Patch{}, false, err
	}

	return patch.FromParts(id, deps, author, sig, payload), true, nil
}

func (s *Store) parentsOf(ctx context.Context, id patch.ID) (patch.Deps, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parent.hash
		FROM st_patches parent
		JOIN st_rel r ON parent.seq_no = r.parent
		JOIN st_patches child ON child.seq_no = r.child
		WHERE child.hash = ?`, id.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: parents of %s: %w", id, err)
	}
	defer rows.Close()

	var deps patch.Deps
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlstore: parents scan: %w", err)
		}
		parentID, err := patch.IDFromBytes(raw)
		if err != nil {
			return nil, err
		}
		deps = append(deps, parentID)
	}
	return deps, rows.Err()
}

func (s *Store) IsIntegrated(ctx context.Context, id patch.ID) (bool, error) {
	var discard int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM st_patches WHERE hash = ?`, id.Bytes()).Scan(&discard)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlstore: is integrated: %w", err)
	}
	return true, nil
}

func (s *Store) Contains(ctx context.Context, id patch.ID) (bool, error) {
	var discard int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM st_patches WHERE hash = ?
		UNION
		SELECT 1 FROM st_stash WHERE hash = ?`, id.Bytes(), id.Bytes()).Scan(&discard)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlstore: contains: %w", err)
	}
	return true, nil
}

func (s *Store) Commit(ctx context.Context, p patch.Patch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: commit begin: %w", err)
	}
	defer tx.Rollback()

	authorID, err := upsertAuthor(ctx, tx, p.Author())
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO st_patches (hash, author_id, signature, data) VALUES (?, ?, ?, ?)`,
		p.ID().Bytes(), authorID, p.Signature().Bytes(), p.Payload())
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	childSeq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlstore: commit last insert id: %w", err)
	}

	for _, dep := range p.Deps() {
		var parentSeq int64
		err := tx.QueryRowContext(ctx, `SELECT seq_no FROM st_patches WHERE hash = ?`, dep.Bytes()).Scan(&parentSeq)
		if err != nil {
			return fmt.Errorf("%w: parent %s: %v", store.ErrMissingParent, dep, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO st_rel (child, parent) VALUES (?, ?)`, childSeq, parentSeq); err != nil {
			return fmt.Errorf("sqlstore: commit edge: %w", err)
		}
	}

	return tx.Commit()
}

func upsertAuthor(ctx context.Context, tx *sql.Tx, peer patch.PeerID) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT author_id FROM st_authors WHERE verification_key = ?`, peer.Bytes()).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("sqlstore: author lookup: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO st_authors (verification_key) VALUES (?)`, peer.Bytes())
	if err != nil {
		return 0, fmt.Errorf("sqlstore: author insert: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) Stash(ctx context.Context, p patch.Patch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO st_stash (hash, author, signature, deps, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`,
		p.ID().Bytes(), p.Author().Bytes(), p.Signature().Bytes(), encodeDeps(p.Deps()), p.Payload())
	if err != nil {
		return fmt.Errorf("sqlstore: stash: %w", err)
	}
	return nil
}

func (s *Store) Unstash(ctx context.Context) ([]patch.Patch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: unstash begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT hash, author, signature, deps, data FROM st_stash`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: unstash select: %w", err)
	}

	var out []patch.Patch
	for rows.Next() {
		var hashRaw, authorRaw, sigRaw, depsRaw, payload []byte
		if err := rows.Scan(&hashRaw, &authorRaw, &sigRaw, &depsRaw, &payload); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlstore: unstash scan: %w", err)
		}

		id, err := patch.IDFromBytes(hashRaw)
		if err != nil {
			rows.Close()
			return nil, err
		}
		author, err := patch.PeerIDFromBytes(authorRaw)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sig, err := patch.SignatureFromBytes(sigRaw)
		if err != nil {
			rows.Close()
			return nil, err
		}
		deps, err := decodeDeps(depsRaw)
		if err != nil {
			rows.Close()
			return nil, err
		}

		out = append(out, patch.FromParts(id, deps, author, sig, payload))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM st_stash`); err != nil {
		return nil, fmt.Errorf("sqlstore: unstash clear: %w", err)
	}

	return out, tx.Commit()
}

// encodeDeps packs a Deps value as the concatenation of its 32-byte IDs,
// order preserved. The stash table has no rel rows to reconstruct order
// from, so the encoding must carry it directly.
func encodeDeps(deps patch.Deps) []byte {
	out := make([]byte, 0, len(deps)*patch.IDSize)
	for _, d := range deps {
		out = append(out, d.Bytes()...)
	}
	return out
}

func decodeDeps(raw []byte) (patch.Deps, error) {
	if len(raw)%patch.IDSize != 0 {
		return nil, fmt.Errorf("sqlstore: malformed stashed deps: length %d not a multiple of %d", len(raw), patch.IDSize)
	}
	n := len(raw) / patch.IDSize
	deps := make(patch.Deps, 0, n)
	for i := 0; i < n; i++ {
		id, err := patch.IDFromBytes(raw[i*patch.IDSize : (i+1)*patch.IDSize])
		if err != nil {
			return nil, err
		}
		deps = append(deps, id)
	}
	return deps, nil
}
