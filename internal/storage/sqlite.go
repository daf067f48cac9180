package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/paperindex/internal/article"
	_ "modernc.org/sqlite"
)

// CatalogFileName is the name of the SQLite catalog file.
const CatalogFileName = "catalog.db"

// DB wraps a SQLite database connection. It is a query layer derived from
// the snapshot and can be rebuilt from it at any time.
type DB struct {
	db *sql.DB
}

// selectArticleFields contains the standard field list for SELECT queries.
const selectArticleFields = `key, id, title, abstract, source,
	pub_date, authors_json, added_at`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			key TEXT PRIMARY KEY,
			id TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			source TEXT,
			pub_date TEXT,
			pub_year INTEGER,
			authors_json TEXT NOT NULL,
			added_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_articles_id ON articles(id) WHERE id IS NOT NULL AND id != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
			key,
			title,
			abstract,
			authors_text,
			source
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the catalog and loads the given records in one transaction.
// Records without a key are stored under their position.
func (d *DB) Rebuild(records []article.Article) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return 0, fmt.Errorf("clearing articles table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM articles_fts"); err != nil {
		return 0, fmt.Errorf("clearing articles_fts table: %w", err)
	}

	insertStmt, err := tx.Prepare(`
		INSERT INTO articles (key, id, title, abstract, source, pub_date, pub_year, authors_json, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing articles insert: %w", err)
	}
	defer insertStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO articles_fts (key, title, abstract, authors_text, source)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, a := range records {
		key := a.Key
		if key == "" {
			key = "slot-" + strconv.Itoa(i)
		}

		authorsJSON, err := json.Marshal(a.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", key, err)
		}

		var addedAt sql.NullString
		if !a.AddedAt.IsZero() {
			addedAt = sql.NullString{String: a.AddedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}

		_, err = insertStmt.Exec(
			key, nullableStringValue(a.ID), a.Title, a.Abstract, a.Source,
			a.PubDate.Raw, a.PubDate.Year, string(authorsJSON), addedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting article %s: %w", key, err)
		}

		_, err = ftsStmt.Exec(key, a.Title, a.Abstract, a.Authors.String(), a.Source)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog: %w", err)
	}
	return len(records), nil
}

// GetByID retrieves an article by its external identifier.
// Returns nil, nil when no article has that identifier.
func (d *DB) GetByID(id string) (*article.Article, error) {
	row := d.db.QueryRow(`SELECT `+selectArticleFields+` FROM articles WHERE id = ? LIMIT 1`, id)
	return scanArticle(row)
}

// Search performs a full-text search over title, abstract, authors and source.
func (d *DB) Search(query string, limit int) ([]article.Article, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+selectArticleFields+`
		FROM articles
		WHERE key IN (SELECT key FROM articles_fts WHERE articles_fts MATCH ?)
		ORDER BY pub_year DESC, key
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// Count returns the total number of articles.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*article.Article, error) {
	var a article.Article
	var id, abstract, source, pubDate, addedAt sql.NullString
	var authorsJSON string

	err := s.Scan(&a.Key, &id, &a.Title, &abstract, &source, &pubDate, &authorsJSON, &addedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	a.ID = id.String
	a.Abstract = abstract.String
	a.Source = source.String
	a.PubDate = article.ParsePubDate(pubDate.String)
	if addedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, addedAt.String); err == nil {
			a.AddedAt = t
		}
	}

	if err := json.Unmarshal([]byte(authorsJSON), &a.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", a.Key, err)
	}

	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]article.Article, error) {
	var articles []article.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		if a != nil {
			articles = append(articles, *a)
		}
	}
	return articles, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery prepares a user query for FTS5.
func prepareFTSQuery(query string) string {
	// For simple queries, just quote the terms
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		// Escape internal quotes and wrap in quotes
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
