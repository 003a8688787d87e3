package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// OpenDB 打开 sqlite 数据库并建表
func OpenDB(dbPath string, log *slog.Logger) (*sql.DB, error) {
	log.Info("Opening catalog database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := InitTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitTables 建表 (幂等)
func InitTables(db *sql.DB) error {
	sqls := []string{
		// 数据集
		`CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			title TEXT,
			private INTEGER NOT NULL DEFAULT 0,
			metadata TEXT -- package_metadata_show 的 JSON
		);`,

		// 资源，position 保持在数据集内的顺序
		`CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			package_id TEXT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT,
			format TEXT,
			url TEXT,
			url_type TEXT,
			last_modified TEXT,
			created TEXT
		);`,

		// 私有数据集的可访问用户
		`CREATE TABLE IF NOT EXISTS package_members (
			package_id TEXT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
			user_name TEXT NOT NULL,
			PRIMARY KEY (package_id, user_name)
		);`,

		// 批量迁移记录
		`CREATE TABLE IF NOT EXISTS migration_runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER,
			finished_at INTEGER,
			forced INTEGER,
			census TEXT
		);`,
	}

	for _, sqlStmt := range sqls {
		if _, err := db.Exec(sqlStmt); err != nil {
			return fmt.Errorf("init table failed: %w\nSQL: %s", err, sqlStmt)
		}
	}
	return nil
}
