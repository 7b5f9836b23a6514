package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/yourorg/specgen/pkg/types"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			target TEXT NOT NULL,
			output_path TEXT NOT NULL,
			base_url TEXT NOT NULL,
			model TEXT NOT NULL,
			file_count INTEGER NOT NULL DEFAULT 0,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			cost REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_msg TEXT NOT NULL DEFAULT '',
			document TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun inserts a run, assigning an ID and timestamp when unset. Saving
// an ID that already exists overwrites the stored row.
func (s *SQLiteStore) SaveRun(run *types.RunRecord) error {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO runs(id,target,output_path,base_url,model,file_count,prompt_tokens,completion_tokens,total_tokens,cost,status,error_msg,document,created_at)
	VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(id) DO UPDATE SET target=excluded.target,output_path=excluded.output_path,base_url=excluded.base_url,model=excluded.model,file_count=excluded.file_count,prompt_tokens=excluded.prompt_tokens,completion_tokens=excluded.completion_tokens,total_tokens=excluded.total_tokens,cost=excluded.cost,status=excluded.status,error_msg=excluded.error_msg,document=excluded.document,created_at=excluded.created_at`,
		run.ID, run.Target, run.OutputPath, run.BaseURL, run.Model, run.FileCount, run.PromptTokens, run.CompletionTokens, run.TotalTokens, run.Cost, run.Status, run.ErrorMsg, run.Document, run.CreatedAt)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*types.RunRecord, error) {
	row := s.db.QueryRow(`SELECT id,target,output_path,base_url,model,file_count,prompt_tokens,completion_tokens,total_tokens,cost,status,error_msg,document,created_at FROM runs WHERE id=?`, id)
	var out types.RunRecord
	if err := row.Scan(&out.ID, &out.Target, &out.OutputPath, &out.BaseURL, &out.Model, &out.FileCount, &out.PromptTokens, &out.CompletionTokens, &out.TotalTokens, &out.Cost, &out.Status, &out.ErrorMsg, &out.Document, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRuns returns runs newest first. A limit of zero or less returns all
// of them.
func (s *SQLiteStore) ListRuns(limit int) ([]types.RunRecord, error) {
	q := `SELECT id,target,output_path,base_url,model,file_count,prompt_tokens,completion_tokens,total_tokens,cost,status,error_msg,document,created_at FROM runs ORDER BY created_at DESC, id DESC`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]types.RunRecord, 0)
	for rows.Next() {
		var r types.RunRecord
		if err := rows.Scan(&r.ID, &r.Target, &r.OutputPath, &r.BaseURL, &r.Model, &r.FileCount, &r.PromptTokens, &r.CompletionTokens, &r.TotalTokens, &r.Cost, &r.Status, &r.ErrorMsg, &r.Document, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ClearRuns() error {
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return errors.New("store is nil")
	}
	return s.db.Close()
}
