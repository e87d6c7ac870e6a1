// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/article-library/pkg/types"
)

// SQLite persistence is write-through: every mutation mirrors the new
// state before returning, and read paths never touch the database. The
// collection is personal-library sized, so the article table is rewritten
// wholesale inside a transaction rather than diffed.

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			ord INTEGER PRIMARY KEY,
			id TEXT,
			idx INTEGER,
			authors TEXT,
			title TEXT,
			journal TEXT,
			abstract TEXT,
			year INTEGER,
			citations INTEGER,
			coord_x REAL,
			coord_y REAL,
			embedding TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pending_operations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			op_type TEXT NOT NULL,
			target_id TEXT NOT NULL,
			payload TEXT,
			ts INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// loadState restores articles, pending operations, and the seeded flag
// from the database. Called once from NewStore before the store is shared.
func (s *Store) loadState() error {
	rows, err := s.db.Query(
		`SELECT id, idx, authors, title, journal, abstract, year, citations, coord_x, coord_y, embedding
		 FROM articles ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("reading articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a types.Article
		var id, embedding sql.NullString
		if err := rows.Scan(&id, &a.Index, &a.Authors, &a.Title, &a.Journal, &a.Abstract,
			&a.Year, &a.Citations, &a.Coordinates.X, &a.Coordinates.Y, &embedding); err != nil {
			return fmt.Errorf("scanning article: %w", err)
		}
		a.ID = id.String
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &a.Embedding); err != nil {
				return fmt.Errorf("parsing embedding: %w", err)
			}
		}
		s.articles = append(s.articles, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading articles: %w", err)
	}

	opRows, err := s.db.Query(
		`SELECT op_type, target_id, payload, ts FROM pending_operations ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("reading pending operations: %w", err)
	}
	defer opRows.Close()

	for opRows.Next() {
		var op types.PendingOperation
		var payload sql.NullString
		if err := opRows.Scan(&op.Type, &op.ID, &payload, &op.Timestamp); err != nil {
			return fmt.Errorf("scanning pending operation: %w", err)
		}
		if payload.Valid && payload.String != "" {
			var p types.ArticlePayload
			if err := json.Unmarshal([]byte(payload.String), &p); err != nil {
				return fmt.Errorf("parsing operation payload: %w", err)
			}
			op.Article = &p
		}
		s.pending = append(s.pending, op)
		if op.Timestamp > s.lastTS {
			s.lastTS = op.Timestamp
		}
	}
	if err := opRows.Err(); err != nil {
		return fmt.Errorf("reading pending operations: %w", err)
	}

	var seeded string
	err = s.db.QueryRow(`SELECT v FROM meta WHERE k = 'seeded'`).Scan(&seeded)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("reading meta: %w", err)
	}
	s.seeded = seeded == "true"

	return nil
}

func (s *Store) persistArticles() error {
	if s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM articles`); err != nil {
		return fmt.Errorf("clearing articles: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO articles (ord, id, idx, authors, title, journal, abstract, year, citations, coord_x, coord_y, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for ord, a := range s.articles {
		var embedding string
		if len(a.Embedding) > 0 {
			data, _ := json.Marshal(a.Embedding)
			embedding = string(data)
		}
		if _, err := stmt.Exec(ord, a.ID, a.Index, a.Authors, a.Title, a.Journal, a.Abstract,
			a.Year, a.Citations, a.Coordinates.X, a.Coordinates.Y, embedding); err != nil {
			return fmt.Errorf("inserting article %q: %w", a.Title, err)
		}
	}

	return tx.Commit()
}

func (s *Store) persistOperation(op types.PendingOperation) error {
	if s.db == nil {
		return nil
	}

	var payload any
	if op.Article != nil {
		data, err := json.Marshal(op.Article)
		if err != nil {
			return fmt.Errorf("encoding operation payload: %w", err)
		}
		payload = string(data)
	}

	_, err := s.db.Exec(
		`INSERT INTO pending_operations (op_type, target_id, payload, ts) VALUES (?, ?, ?, ?)`,
		string(op.Type), op.ID, payload, op.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting pending operation: %w", err)
	}
	return nil
}

func (s *Store) persistClearPending() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM pending_operations`); err != nil {
		return fmt.Errorf("clearing pending operations: %w", err)
	}
	return nil
}

func (s *Store) persistSeeded() error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO meta (k, v) VALUES ('seeded', 'true')
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`)
	if err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}
	return nil
}
