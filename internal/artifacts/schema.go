package artifacts

// Schema for the artifact table.
// Compatible with both SQLite and PostgreSQL.

const schemaArtifacts = `
CREATE TABLE IF NOT EXISTS artifacts (
    key TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    payload BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`
