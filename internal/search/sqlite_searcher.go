package search

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Result struct {
	Name        string `json:"name"`
	Section     int    `json:"section"`
	Description string `json:"description"`
	Path        string `json:"path,omitempty"`
	ManPath     string `json:"manPath,omitempty"`
}

// Title returns name(section).
func (r Result) Title() string {
	return r.Name + "(" + strconv.Itoa(r.Section) + ")"
}

type SearchResponse struct {
	Total   uint64   `json:"total"`
	Results []Result `json:"results"`
}

type SQLiteSearcher struct {
	db *sql.DB
}

// NewSQLiteSearcher opens an index written by SQLiteIndexer.
func NewSQLiteSearcher(path string) (*SQLiteSearcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteSearcher{db: db}, nil
}

func (s *SQLiteSearcher) Close() error {
	return s.db.Close()
}

// Search runs an apropos query over names, descriptions and page text.
// A zero section matches every section.
func (s *SQLiteSearcher) Search(ctx context.Context, queryString string, section int, limit int, offset int) (SearchResponse, error) {
	queryString = sanitizeQuery(queryString)
	if queryString == "" {
		return SearchResponse{Results: []Result{}}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT p.name, p.section, p.description, p.path, p.man_path, COUNT(*) OVER() AS total
		 FROM pages_fts f
		 JOIN pages p ON p.rowid = f.rowid
		 WHERE pages_fts MATCH ?
		 AND f.rank MATCH 'bm25(10.0, 5.0, 1.0)'`
	args := []any{queryString}

	if section > 0 {
		query += ` AND p.section = ?`
		args = append(args, section)
	}

	query += ` ORDER BY f.rank, p.name LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var resp SearchResponse
	resp.Results = make([]Result, 0)

	for rows.Next() {
		var r Result
		var total uint64
		if err := rows.Scan(&r.Name, &r.Section, &r.Description, &r.Path, &r.ManPath, &total); err != nil {
			return SearchResponse{}, fmt.Errorf("scan result: %w", err)
		}
		resp.Total = total
		resp.Results = append(resp.Results, r)
	}
	if err := rows.Err(); err != nil {
		return SearchResponse{}, fmt.Errorf("iterate results: %w", err)
	}

	return resp, nil
}

// Whatis returns the pages named exactly name, in section order.
func (s *SQLiteSearcher) Whatis(ctx context.Context, name string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, section, description, path, man_path FROM pages WHERE name = ? ORDER BY section`, name)
	if err != nil {
		return nil, fmt.Errorf("whatis query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Name, &r.Section, &r.Description, &r.Path, &r.ManPath); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func sanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var filtered []string
	for _, t := range strings.Fields(b.String()) {
		switch strings.ToUpper(t) {
		case "AND", "OR", "NOT", "NEAR":
			continue
		}
		filtered = append(filtered, `"`+t+`"*`)
	}
	return strings.Join(filtered, " ")
}
