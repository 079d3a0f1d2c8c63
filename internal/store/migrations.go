package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	position       INTEGER NOT NULL UNIQUE,
	unread         INTEGER NOT NULL DEFAULT 0 CHECK(unread IN (0, 1)),
	reason         TEXT NOT NULL DEFAULT '',
	subject_type   TEXT NOT NULL DEFAULT '',
	repo_full_name TEXT NOT NULL DEFAULT '',
	raw            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fetch_state (
	id  INTEGER PRIMARY KEY CHECK(id = 1),
	seq INTEGER NOT NULL DEFAULT 0
);

INSERT INTO fetch_state (id, seq) VALUES (1, 0);

CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(unread);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
