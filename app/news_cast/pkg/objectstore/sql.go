package objectstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect 区分 SQL 方言
type Dialect struct {
	Driver   string
	BlobType string
	// Placeholder 返回第 n 个参数 (从 1 开始) 的占位符
	Placeholder func(n int) string
}

var (
	DialectPostgres = Dialect{
		Driver:      "postgres",
		BlobType:    "BYTEA",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	DialectSQLite = Dialect{
		Driver:      "sqlite",
		BlobType:    "BLOB",
		Placeholder: func(int) string { return "?" },
	}
)

// SQL 把对象存放在数据库的 objects 表中
type SQL struct {
	db      *sql.DB
	dialect Dialect
	bucket  string
	baseURL string

	getQuery string
	putQuery string
}

// 确保 SQL 实现了 Store 接口
var _ Store = (*SQL)(nil)

// OpenSQL 连接数据库并初始化表结构
func OpenSQL(ctx context.Context, dialect Dialect, dsn, bucket, baseURL string) (*SQL, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if dialect.Driver == DialectSQLite.Driver {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewSQL(db, dialect, bucket, baseURL)
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL 使用已有连接创建存储，调用方负责建表 (见 OpenSQL)
func NewSQL(db *sql.DB, dialect Dialect, bucket, baseURL string) *SQL {
	p := dialect.Placeholder
	return &SQL{
		db:      db,
		dialect: dialect,
		bucket:  bucket,
		baseURL: baseURL,
		getQuery: fmt.Sprintf(`SELECT body FROM objects WHERE bucket = %s AND object_key = %s`,
			p(1), p(2)),
		putQuery: fmt.Sprintf(`INSERT INTO objects (bucket, object_key, content_type, body) VALUES (%s, %s, %s, %s)
			ON CONFLICT (bucket, object_key) DO UPDATE SET
				content_type = excluded.content_type,
				body = excluded.body,
				updated_at = CURRENT_TIMESTAMP`,
			p(1), p(2), p(3), p(4)),
	}
}

func (s *SQL) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS objects (
			bucket       TEXT NOT NULL,
			object_key   TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			body         %s NOT NULL,
			updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (bucket, object_key)
		)`, s.dialect.BlobType))
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, s.getQuery, s.bucket, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.bucket, key, err)
	}
	return body, nil
}

func (s *SQL) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if body == nil {
		body = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, s.putQuery, s.bucket, key, contentType, body); err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *SQL) URL(key string) string {
	return PublicURL(s.baseURL, s.bucket, key)
}
