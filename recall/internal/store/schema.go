package store

// tableSchema creates the primary tables. All instants are epoch seconds,
// already normalized to UTC by the sync engine.
//
// history.content is NULL until enrichment succeeds; the empty string is an
// explicit marker for "fetched, no usable content" and is distinct from NULL.
const tableSchema = `
CREATE TABLE IF NOT EXISTS history (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    url                TEXT NOT NULL,
    title              TEXT NOT NULL DEFAULT '',
    visit_time         INTEGER NOT NULL,
    domain             TEXT NOT NULL,
    content            TEXT,
    content_updated_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_history_visit ON history(visit_time DESC);
CREATE INDEX IF NOT EXISTS idx_history_domain ON history(domain);
CREATE INDEX IF NOT EXISTS idx_history_pending ON history(visit_time) WHERE content IS NULL;

CREATE TABLE IF NOT EXISTS bookmarks (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    url        TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    added_time INTEGER NOT NULL,
    folder     TEXT NOT NULL DEFAULT '',
    domain     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_added ON bookmarks(added_time DESC);

-- One row per ingestion source: the epoch-seconds instant up to which that
-- source has been durably processed.
CREATE TABLE IF NOT EXISTS watermarks (
    source_key     TEXT PRIMARY KEY,
    last_processed INTEGER NOT NULL
);
`

// ftsSchema creates the full-text index over history plus the triggers that
// keep it consistent with the primary table. The triggers fire inside the
// same transaction as the primary-row mutation, so a reader never sees a
// history row without its index entry or vice versa. Kept separate from
// tableSchema so Reindex can drop and recreate just this part.
const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS history_fts USING fts5(
    title, content, domain, visit_time UNINDEXED,
    content='history', content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS history_ai AFTER INSERT ON history BEGIN
    INSERT INTO history_fts(rowid, title, content, domain, visit_time)
    VALUES (new.id, new.title, COALESCE(new.content, ''), new.domain, new.visit_time);
END;
CREATE TRIGGER IF NOT EXISTS history_ad AFTER DELETE ON history BEGIN
    INSERT INTO history_fts(history_fts, rowid, title, content, domain, visit_time)
    VALUES ('delete', old.id, old.title, COALESCE(old.content, ''), old.domain, old.visit_time);
END;
CREATE TRIGGER IF NOT EXISTS history_au AFTER UPDATE ON history BEGIN
    INSERT INTO history_fts(history_fts, rowid, title, content, domain, visit_time)
    VALUES ('delete', old.id, old.title, COALESCE(old.content, ''), old.domain, old.visit_time);
    INSERT INTO history_fts(rowid, title, content, domain, visit_time)
    VALUES (new.id, new.title, COALESCE(new.content, ''), new.domain, new.visit_time);
END;
`

// dropFTSSchema removes the full-text index and its sync triggers.
const dropFTSSchema = `
DROP TRIGGER IF EXISTS history_ai;
DROP TRIGGER IF EXISTS history_ad;
DROP TRIGGER IF EXISTS history_au;
DROP TABLE IF EXISTS history_fts;
`

// repopulateFTS bulk-loads the full-text index from the primary table.
const repopulateFTS = `
INSERT INTO history_fts(rowid, title, content, domain, visit_time)
SELECT id, title, COALESCE(content, ''), domain, visit_time FROM history;
`

// Schema is the complete recall schema.
const Schema = tableSchema + ftsSchema
