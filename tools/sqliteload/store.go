package main

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/dustin/go-wikichars"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS titles (
	article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	PRIMARY KEY (article_id, title)
);
CREATE INDEX IF NOT EXISTS titles_title ON titles(title);
CREATE TABLE IF NOT EXISTS characters (
	article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	PRIMARY KEY (article_id, name)
);
`

// A Store keeps records in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a record, replacing whatever was there under its id.
func (s *Store) Put(r *wikichars.Record) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id := int64(r.ID)
	if _, err = tx.Exec(`INSERT OR IGNORE INTO articles (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("inserting article %d: %w", r.ID, err)
	}
	for _, table := range []string{"titles", "characters"} {
		if _, err = tx.Exec(`DELETE FROM `+table+` WHERE article_id = ?`, id); err != nil {
			return fmt.Errorf("clearing %s of %d: %w", table, r.ID, err)
		}
	}
	for _, t := range r.Titles {
		if _, err = tx.Exec(`INSERT OR IGNORE INTO titles (article_id, title) VALUES (?, ?)`,
			id, t); err != nil {
			return fmt.Errorf("inserting title %q: %w", t, err)
		}
	}
	for name, desc := range r.Characters {
		if _, err = tx.Exec(`INSERT INTO characters (article_id, name, description) VALUES (?, ?, ?)`,
			id, name, desc); err != nil {
			return fmt.Errorf("inserting character %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// Get reads back the record stored under id.  It returns nil if there
// isn't one.
func (s *Store) Get(id uint64) (*wikichars.Record, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE id = ?`, int64(id)).Scan(&n)
	if err != nil || n == 0 {
		return nil, err
	}

	rv := &wikichars.Record{ID: id, Characters: map[string]string{}}

	rows, err := s.db.Query(`SELECT title FROM titles WHERE article_id = ?`, int64(id))
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return nil, err
		}
		rv.Titles = append(rv.Titles, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(rv.Titles)

	rows, err = s.db.Query(`SELECT name, description FROM characters WHERE article_id = ?`,
		int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, desc string
		if err := rows.Scan(&name, &desc); err != nil {
			return nil, err
		}
		rv.Characters[name] = desc
	}
	return rv, rows.Err()
}

// FindByTitle gets the ids of articles with the given title.
func (s *Store) FindByTitle(title string) ([]uint64, error) {
	rows, err := s.db.Query(`SELECT article_id FROM titles WHERE title = ? ORDER BY article_id`,
		title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rv []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		rv = append(rv, uint64(id))
	}
	return rv, rows.Err()
}
