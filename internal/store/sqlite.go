package store

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmcaldera/quizwire/internal/models"
)

// SQLitePersister stores the question bank in a SQLite database. Saves
// replace the whole table inside one transaction, mirroring the wholesale
// rewrite semantics of the flat-file persister.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (or creates) the database at dbPath.
func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	p := &SQLitePersister{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLitePersister) migrate() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			position      INTEGER PRIMARY KEY,
			id            TEXT NOT NULL UNIQUE,
			text          TEXT NOT NULL,
			options       TEXT NOT NULL,
			correct_index INTEGER NOT NULL,
			category      TEXT NOT NULL DEFAULT '',
			image_url     TEXT NOT NULL DEFAULT ''
		)`)
	return err
}

// Close closes the underlying database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

func (p *SQLitePersister) Load(ctx context.Context) ([]models.Question, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, text, options, correct_index, category, image_url
		 FROM questions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var optionsJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optionsJSON, &q.CorrectIndex, &q.Category, &q.ImageURL); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (p *SQLitePersister) Save(ctx context.Context, questions []models.Question) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (position, id, text, options, correct_index, category, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, q := range questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, q.ID, q.Text, string(optionsJSON), q.CorrectIndex, q.Category, q.ImageURL); err != nil {
			return err
		}
	}

	return tx.Commit()
}
