package sqlstore

// schema is applied once per open connection pool. Table names mirror the
// replication core's own relational layout: authors keyed by verification
// key, patches keyed by content hash, a stash for parent-less arrivals, and
// rel recording the integrated parent/child edges that Heads() and the
// per-patch Deps lookup both read from.
const schema = `
CREATE TABLE IF NOT EXISTS st_authors (
	author_id         INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	verification_key  BLOB NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS st_patches (
	seq_no     INTEGER PRIMARY KEY AUTOINCREMENT,
	hash       BLOB NOT NULL UNIQUE CHECK (LENGTH(hash) = 32),
	author_id  INTEGER NOT NULL REFERENCES st_authors(author_id),
	signature  BLOB NOT NULL CHECK (LENGTH(signature) = 64),
	data       BLOB
);

CREATE TABLE IF NOT EXISTS st_stash (
	seq_no     INTEGER PRIMARY KEY AUTOINCREMENT,
	hash       BLOB NOT NULL UNIQUE CHECK (LENGTH(hash) = 32),
	author     BLOB NOT NULL CHECK (LENGTH(author) = 32),
	signature  BLOB NOT NULL CHECK (LENGTH(signature) = 64),
	deps       BLOB NOT NULL,
	data       BLOB
);

CREATE TABLE IF NOT EXISTS st_rel (
	child   INTEGER NOT NULL REFERENCES st_patches(seq_no),
	parent  INTEGER NOT NULL REFERENCES st_patches(seq_no),
	PRIMARY KEY (child, parent)
);

CREATE INDEX IF NOT EXISTS idx_st_rel_parent ON st_rel(parent);
`
