package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// Timestamps are unix milliseconds written by the application so that
	// ordering by creation time stays stable within the same second.
	// note_tags keeps tag order and allows a tag to repeat on one note.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS innervoice_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS notes (
    id UUID PRIMARY KEY,
    content TEXT NOT NULL,
    mood TEXT,
    emotional_tone TEXT,
    ai_analysis TEXT,
    ai_expansion TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC);

CREATE TABLE IF NOT EXISTS note_tags (
    note_id UUID NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    tag VARCHAR(256) NOT NULL,
    PRIMARY KEY (note_id, position)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag);
`
)
