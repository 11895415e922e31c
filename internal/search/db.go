package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema drops and recreates all tables. The index is rebuilt from scratch
// on each build so there is no need for migrations.
const schema = `
DROP TRIGGER IF EXISTS pages_au;
DROP TRIGGER IF EXISTS pages_ad;
DROP TRIGGER IF EXISTS pages_ai;
DROP TABLE IF EXISTS pages_fts;
DROP TABLE IF EXISTS pages;

CREATE TABLE pages (
	name TEXT NOT NULL,
	section INTEGER NOT NULL,
	description TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	man_path TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (name, section)
);

CREATE VIRTUAL TABLE pages_fts USING fts5(
	name, description, content,
	content='pages',
	content_rowid='rowid'
);

CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
	INSERT INTO pages_fts(rowid, name, description, content)
	VALUES (new.rowid, new.name, new.description, new.content);
END;

CREATE TRIGGER pages_ad AFTER DELETE ON pages BEGIN
	INSERT INTO pages_fts(pages_fts, rowid, name, description, content)
	VALUES ('delete', old.rowid, old.name, old.description, old.content);
END;

CREATE TRIGGER pages_au AFTER UPDATE ON pages BEGIN
	INSERT INTO pages_fts(pages_fts, rowid, name, description, content)
	VALUES ('delete', old.rowid, old.name, old.description, old.content);
	INSERT INTO pages_fts(rowid, name, description, content)
	VALUES (new.rowid, new.name, new.description, new.content);
END;
`

// DefaultFile is the index file name inside a build output directory.
const DefaultFile = "whatis.db"

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	// INSERT OR REPLACE must fire the delete trigger to keep the FTS
	// table in step.
	if _, err := db.Exec("PRAGMA recursive_triggers=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable recursive triggers: %w", err)
	}
	return db, nil
}
