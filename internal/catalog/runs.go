package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
)

// Run 一次批量迁移的记录，Census 为 JSON
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Forced     bool
	Census     []byte
}

// RecordRun 保存迁移记录，ID 为空时生成 uuid
func (c *Catalog) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO migration_runs (id, started_at, finished_at, forced, census) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Forced, string(run.Census))
	if err != nil {
		return e.New(code.DatabaseError, "record migration run", err)
	}
	return nil
}

// LastRun 最近一次迁移
func (c *Catalog) LastRun(ctx context.Context) (*Run, error) {
	run := &Run{}
	var started, finished int64
	var census string
	err := c.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, forced, census FROM migration_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&run.ID, &started, &finished, &run.Forced, &census)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, e.New(code.NotFound, "no migration run recorded", nil)
	}
	if err != nil {
		return nil, e.New(code.DatabaseError, "query migration run", err)
	}
	run.StartedAt = time.Unix(started, 0)
	run.FinishedAt = time.Unix(finished, 0)
	run.Census = []byte(census)
	return run, nil
}
