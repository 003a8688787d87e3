// Package catalog is a sqlite-backed implementation of the host metadata service.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/manifest"
	"s3-resources/pkg/protocol"
)

type Catalog struct {
	db *sql.DB
}

func New(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// CreatePackage 新建数据集；metadata 为 JSON 文本，可为空
func (c *Catalog) CreatePackage(ctx context.Context, pkg *protocol.Package, private bool, metadata []byte) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	if pkg.Name == "" {
		return e.New(code.ValidationError, "package name is required", nil)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return e.New(code.DatabaseError, "begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO packages (id, name, title, private, metadata) VALUES (?, ?, ?, ?, ?)`,
		pkg.ID, pkg.Name, pkg.Title, private, string(metadata))
	if err != nil {
		return e.New(code.ValidationError, fmt.Sprintf("create package %s", pkg.Name), err)
	}

	for i, res := range pkg.Resources {
		res.PackageID = pkg.ID
		if err := insertResource(ctx, tx, res, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return e.New(code.DatabaseError, "commit", err)
	}
	return nil
}

// CreateResource 追加资源到数据集末尾
func (c *Catalog) CreateResource(ctx context.Context, res *protocol.Resource) error {
	var pos int
	err := c.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM resources WHERE package_id = ?`, res.PackageID).Scan(&pos)
	if err != nil {
		return e.New(code.DatabaseError, "query position", err)
	}
	if _, err := c.ShowPackage(ctx, res.PackageID); err != nil {
		return err
	}
	return insertResource(ctx, c.db, res, pos)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertResource(ctx context.Context, db execer, res *protocol.Resource, pos int) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.Created == nil {
		now := time.Now().UTC()
		res.Created = &now
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO resources (id, package_id, position, name, format, url, url_type, last_modified, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.PackageID, pos, res.Name, res.Format, res.URL, string(res.URLType),
		formatTime(res.LastModified), formatTime(res.Created))
	if err != nil {
		return e.New(code.ValidationError, fmt.Sprintf("create resource %s", res.Name), err)
	}
	return nil
}

// AddMember 允许用户访问私有数据集
func (c *Catalog) AddMember(ctx context.Context, packageID, user string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO package_members (package_id, user_name) VALUES (?, ?)`, packageID, user)
	if err != nil {
		return e.New(code.DatabaseError, "add member", err)
	}
	return nil
}

// CheckAccess 公开数据集任何人可读；私有数据集需要是成员
func (c *Catalog) CheckAccess(ctx context.Context, user, id string) error {
	var pkgID string
	var private bool
	err := c.db.QueryRowContext(ctx,
		`SELECT id, private FROM packages WHERE id = ? OR name = ?`, id, id).Scan(&pkgID, &private)
	if errors.Is(err, sql.ErrNoRows) {
		return e.New(code.NotFound, "Dataset not found", nil)
	}
	if err != nil {
		return e.New(code.DatabaseError, "check access", err)
	}
	if !private {
		return nil
	}

	var n int
	err = c.db.QueryRowContext(ctx,
		`SELECT count(*) FROM package_members WHERE package_id = ? AND user_name = ?`, pkgID, user).Scan(&n)
	if err != nil {
		return e.New(code.DatabaseError, "check access", err)
	}
	if n == 0 || user == "" {
		return e.New(code.NotAuthorized, fmt.Sprintf("Unauthorized to read dataset %s", id), nil)
	}
	return nil
}

// ShowPackage 按 id 或 name 查询，资源按 position 排序
func (c *Catalog) ShowPackage(ctx context.Context, id string) (*protocol.Package, error) {
	pkg := &protocol.Package{}
	var title sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, title FROM packages WHERE id = ? OR name = ?`, id, id).Scan(&pkg.ID, &pkg.Name, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, e.New(code.NotFound, fmt.Sprintf("Dataset not found: %s", id), nil)
	}
	if err != nil {
		return nil, e.New(code.DatabaseError, "show package", err)
	}
	pkg.Title = title.String

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, package_id, name, format, url, url_type, last_modified, created
		FROM resources WHERE package_id = ? ORDER BY position`, pkg.ID)
	if err != nil {
		return nil, e.New(code.DatabaseError, "list resources", err)
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		pkg.Resources = append(pkg.Resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, e.New(code.DatabaseError, "list resources", err)
	}
	return pkg, nil
}

// ShowMetadata 数据集元数据文档；没有存元数据时只包含 name / title
func (c *Catalog) ShowMetadata(ctx context.Context, id string) (*yaml.Node, error) {
	var name string
	var title, metadata sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT name, title, metadata FROM packages WHERE id = ? OR name = ?`, id, id).Scan(&name, &title, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, e.New(code.NotFound, fmt.Sprintf("Dataset not found: %s", id), nil)
	}
	if err != nil {
		return nil, e.New(code.DatabaseError, "show metadata", err)
	}

	if strings.TrimSpace(metadata.String) == "" {
		return manifest.FromValue(map[string]string{"name": name, "title": title.String})
	}
	doc, err := manifest.Decode([]byte(metadata.String))
	if err != nil {
		return nil, e.New(code.ValidationError, fmt.Sprintf("metadata of %s", name), err)
	}
	return doc, nil
}

// ShowResource 按 id 查询
func (c *Catalog) ShowResource(ctx context.Context, id string) (*protocol.Resource, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, package_id, name, format, url, url_type, last_modified, created
		FROM resources WHERE id = ?`, id)
	res, err := scanResource(row)
	if e.IsCode(err, code.DatabaseError) && errors.Is(err, sql.ErrNoRows) {
		return nil, e.New(code.NotFound, fmt.Sprintf("Resource not found: %s", id), nil)
	}
	return res, err
}

// UpdateResource 写回可变字段 (ID、所属数据集不变)
func (c *Catalog) UpdateResource(ctx context.Context, res *protocol.Resource) error {
	if strings.TrimSpace(res.Name) == "" && strings.TrimSpace(res.URL) == "" {
		return e.New(code.ValidationError, fmt.Sprintf("resource %s needs a name or url", res.ID), nil)
	}

	now := time.Now().UTC()
	result, err := c.db.ExecContext(ctx, `
		UPDATE resources SET name = ?, format = ?, url = ?, url_type = ?, last_modified = ?
		WHERE id = ?`,
		res.Name, res.Format, res.URL, string(res.URLType), formatTime(&now), res.ID)
	if err != nil {
		return e.New(code.DatabaseError, "update resource", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return e.New(code.NotFound, fmt.Sprintf("Resource not found: %s", res.ID), nil)
	}
	res.LastModified = &now
	return nil
}

// ListPackages 所有数据集名 (字典序)
func (c *Catalog) ListPackages(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM packages ORDER BY name`)
	if err != nil {
		return nil, e.New(code.DatabaseError, "list packages", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, e.New(code.DatabaseError, "list packages", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(s scanner) (*protocol.Resource, error) {
	res := &protocol.Resource{}
	var name, format, url, urlType, lastModified, created sql.NullString
	if err := s.Scan(&res.ID, &res.PackageID, &name, &format, &url, &urlType, &lastModified, &created); err != nil {
		return nil, e.New(code.DatabaseError, "scan resource", err)
	}
	res.Name = name.String
	res.Format = format.String
	res.URL = url.String
	res.URLType = protocol.LocationKind(urlType.String)
	res.LastModified = parseTime(lastModified)
	res.Created = parseTime(created)
	return res, nil
}

func formatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
