package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

const insertPage = `INSERT OR REPLACE INTO pages (name, section, description, path, man_path, content) VALUES (?, ?, ?, ?, ?, ?)`

var errIndexerClosed = errors.New("indexer closed")

// SQLiteIndexer rebuilds the whatis index inside a single transaction.
// Readers keep seeing the previous index until Close commits the new one.
type SQLiteIndexer struct {
	mu    sync.Mutex
	db    *sql.DB
	tx    *sql.Tx
	stmt  *sql.Stmt
	total int
}

func NewSQLiteIndexer(path string) (*SQLiteIndexer, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("begin rebuild: %w", err)
	}
	fail := func(msg string, err error) (*SQLiteIndexer, error) {
		_ = tx.Rollback()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if _, err := tx.Exec(schema); err != nil {
		return fail("create schema", err)
	}
	stmt, err := tx.Prepare(insertPage)
	if err != nil {
		return fail("prepare insert", err)
	}
	return &SQLiteIndexer{db: db, tx: tx, stmt: stmt}, nil
}

func (s *SQLiteIndexer) IndexPage(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return errIndexerClosed
	}
	if _, err := s.stmt.ExecContext(ctx, doc.Name, doc.Section, doc.Description, doc.Path, doc.ManPath, doc.Content); err != nil {
		return fmt.Errorf("index page %s: %w", doc.Title(), err)
	}
	s.total++
	return nil
}

// Count returns the number of pages indexed so far.
func (s *SQLiteIndexer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Rollback abandons the rebuild and leaves the previous index in place.
// Close after Rollback only releases the database.
func (s *SQLiteIndexer) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	_ = s.stmt.Close()
	err := s.tx.Rollback()
	s.tx, s.stmt = nil, nil
	s.total = 0
	return err
}

// Close commits the rebuilt index and closes the database.
func (s *SQLiteIndexer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.tx != nil {
		_ = s.stmt.Close()
		if cerr := s.tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit index: %w", cerr)
		}
		s.tx, s.stmt = nil, nil
	}
	return errors.Join(err, s.db.Close())
}
