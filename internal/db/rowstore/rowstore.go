// Package rowstore runs templated queries through gorm and returns rows of
// nullable text columns.
package rowstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/dsn"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

// Supported drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrDatabase wraps every failure reported by the database.
	ErrDatabase = errors.New("database error")

	// ErrDriver is returned for unknown driver names.
	ErrDriver = errors.New("unsupported database driver")

	// ErrClosed is returned when the store was closed.
	ErrClosed = errors.New("row store is closed")
)

// Rows is a fully read result set.
type Rows struct {
	Columns []string
	Values  [][]sql.NullString
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.Values) }

// Store is a connection used for a single session.
type Store struct {
	db       *gorm.DB
	driver   string
	hostInfo string
}

// Option adjusts how Open connects.
type Option func(*gorm.Config)

// WithLogger traces statements through l instead of discarding them.
func WithLogger(l logger.Interface) Option {
	return func(cfg *gorm.Config) {
		cfg.Logger = l
	}
}

// Open connects with the named driver, deriving the connection from the
// session options.
func Open(driver string, c *options.Context, opts ...Option) (*Store, error) {
	var (
		dialector gorm.Dialector
		hostInfo  string
	)

	ep := dsn.ParseHost(c.Host.String())

	switch driver {
	case DriverMySQL, "":
		driver = DriverMySQL

		cfg, err := dsn.MySQL(c)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		dialector = gormmysql.New(gormmysql.Config{DSN: cfg.FormatDSN(), DSNConfig: cfg})
		hostInfo = ep.Description(3306) //nolint:mnd
	case DriverPostgres:
		conn, err := dsn.Postgres(c)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		dialector = postgres.Open(conn)
		hostInfo = ep.Description(5432) //nolint:mnd
	case DriverSQLite:
		path, err := dsn.SQLite(c)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		dialector = sqlite.Open(path)
		hostInfo = "sqlite " + path
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriver, driver)
	}

	cfg := &gorm.Config{Logger: logger.Discard}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	if c.Verbose {
		log.Debug().Str("driver", driver).Str("host", hostInfo).Msg("database connection opened")
	}

	return &Store{db: db, driver: driver, hostInfo: hostInfo}, nil
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	driver := db.Dialector.Name()

	return &Store{db: db, driver: driver, hostInfo: driver}
}

// DB exposes the gorm handle, for migrations.
func (s *Store) DB() *gorm.DB { return s.db }

// Driver returns the driver name.
func (s *Store) Driver() string { return s.driver }

// HostInfo describes the server endpoint for log records.
func (s *Store) HostInfo() string { return s.hostInfo }

// Query runs query and reads every row.
func (s *Store) Query(ctx context.Context, query string) (*Rows, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	out := &Rows{Columns: columns}

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))

		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
		}

		out.Values = append(out.Values, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	return out, nil
}

// Exec runs a statement and returns the number of affected rows.
func (s *Store) Exec(ctx context.Context, query string) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}

	result := s.db.WithContext(ctx).Exec(query)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %w", ErrDatabase, result.Error)
	}

	return result.RowsAffected, nil
}

// Escape quotes value for a single quoted literal in the store's dialect.
func (s *Store) Escape(value string) string {
	if s.driver == DriverMySQL {
		return EscapeMySQL(value)
	}

	return strings.ReplaceAll(value, "'", "''")
}

// EscapeMySQL escapes like mysql_real_escape_string with a backslash-escaping
// connection.
func EscapeMySQL(value string) string {
	var b strings.Builder

	b.Grow(len(value))

	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// Close releases the connection. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	s.db = nil

	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	return nil
}
