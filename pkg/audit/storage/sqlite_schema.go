package storage

// SchemaVersion is the current database schema version. Bump it when
// the schema changes and handle migration in initialize.
const SchemaVersion = 1

// Schema creates the audit tables and indexes. All statements are
// idempotent so initialization can run on every open.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id            TEXT PRIMARY KEY,
	recorded_time DATETIME NOT NULL,
	event         TEXT NOT NULL,
	triggered_by  TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	error         TEXT,
	duration_ns   INTEGER NOT NULL,
	config_hash   TEXT,
	source        TEXT,
	modules       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_time ON audit_records(recorded_time);
CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_records(event);
CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_records(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InsertSchemaVersion records the schema version once; re-running it
// for an already recorded version is a no-op.
const InsertSchemaVersion = `
INSERT INTO schema_version (version) VALUES (?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion returns the highest recorded schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
