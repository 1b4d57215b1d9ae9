package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config locates the dataset as an object in S3 or MinIO.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

func (c S3Config) enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != "" && strings.TrimSpace(c.Object) != ""
}

// SourceConfig selects where the dataset is read from. Postgres wins over
// S3, which wins over the local file.
type SourceConfig struct {
	Path          string
	S3            S3Config
	PostgresDSN   string
	PostgresTable string
}

// Load reads the dataset once from the configured source and returns the
// immutable Base plus a short description of where it came from.
func Load(ctx context.Context, cfg SourceConfig) (*Base, string, error) {
	var (
		entries []Entry
		from    string
		err     error
	)
	switch {
	case strings.TrimSpace(cfg.PostgresDSN) != "":
		table := firstNonEmpty(cfg.PostgresTable, "tech_support")
		entries, err = loadPostgres(ctx, cfg.PostgresDSN, table)
		from = "postgres:" + table
	case cfg.S3.enabled():
		entries, err = loadS3(ctx, cfg.S3)
		from = "s3://" + cfg.S3.Bucket + "/" + cfg.S3.Object
	default:
		path := firstNonEmpty(cfg.Path, "tech_support_dataset.csv")
		entries, err = loadFile(path)
		from = "file:" + path
	}
	if err != nil {
		return nil, from, err
	}
	return New(entries), from, nil
}

func loadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func loadS3(ctx context.Context, cfg S3Config) ([]Entry, error) {
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: firstNonEmpty(cfg.Region, "us-east-1"),
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	obj, err := client.GetObject(ctx, strings.TrimSpace(cfg.Bucket), strings.TrimSpace(cfg.Object), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get knowledge object: %w", err)
	}
	defer obj.Close()
	return ReadCSV(obj)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func loadPostgres(ctx context.Context, dsn, table string) ([]Entry, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid knowledge table name %q", table)
	}
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect knowledge db: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT issue_category, customer_issue, tech_response FROM `+table)
	if err != nil {
		return nil, fmt.Errorf("query knowledge table: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var category, issue, remediation sql.NullString
		if err := rows.Scan(&category, &issue, &remediation); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		if e, ok := entryFromRow(category, issue, remediation); ok {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}

// entryFromRow treats NULL columns as empty, like a missing CSV cell.
func entryFromRow(category, issue, remediation sql.NullString) (Entry, bool) {
	return newEntry(category.String, issue.String, remediation.String)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
