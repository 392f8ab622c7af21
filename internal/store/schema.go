package store

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
    id           INTEGER PRIMARY KEY CHECK (id = 1),
    skills       TEXT NOT NULL DEFAULT '[]',
    last_updated TEXT NOT NULL,
    source       TEXT NOT NULL
);
`
