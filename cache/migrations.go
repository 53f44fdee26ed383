package cache

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations must be numbered sequentially from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
	section              TEXT PRIMARY KEY,
	fetched_at           INTEGER NOT NULL,
	next_page_token      TEXT NOT NULL DEFAULT '',
	total_emails         INTEGER NOT NULL DEFAULT 0,
	result_size_estimate INTEGER NOT NULL DEFAULT 0,
	is_complete          INTEGER NOT NULL DEFAULT 0,
	emails               TEXT NOT NULL DEFAULT '[]'
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_sections_fetched_at ON sections(fetched_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
