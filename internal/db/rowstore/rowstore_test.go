package rowstore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/logger/adapter/gormlog"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would see its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestQuery(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.User{
		Name:     "alice",
		Password: sql.NullString{String: "secret", Valid: true},
		Status:   sql.NullInt64{Int64: 2, Valid: true},
	}).Error)
	require.NoError(t, db.Create(&models.User{Name: "bob"}).Error)

	store := rowstore.New(db)
	defer store.Close()

	assert.Equal(t, rowstore.DriverSQLite, store.Driver())

	rows, err := store.Query(context.Background(),
		"SELECT user_password, status FROM users ORDER BY user_name")
	require.NoError(t, err)

	assert.Equal(t, []string{"user_password", "status"}, rows.Columns)
	require.Equal(t, 2, rows.Len())
	assert.Equal(t, sql.NullString{String: "secret", Valid: true}, rows.Values[0][0])
	assert.Equal(t, sql.NullString{String: "2", Valid: true}, rows.Values[0][1])
	assert.False(t, rows.Values[1][0].Valid)

	rows, err = store.Query(context.Background(), "SELECT user_password FROM users WHERE user_name = 'nobody'")
	require.NoError(t, err)
	assert.Equal(t, 0, rows.Len())
}

func TestQueryError(t *testing.T) {
	store := rowstore.New(setupTestDB(t))
	defer store.Close()

	_, err := store.Query(context.Background(), "SELECT nope FROM missing")
	require.ErrorIs(t, err, rowstore.ErrDatabase)

	_, err = store.Exec(context.Background(), "UPDATE missing SET a = 1")
	require.ErrorIs(t, err, rowstore.ErrDatabase)
}

func TestExec(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.User{Name: "carol"}).Error)

	store := rowstore.New(db)
	defer store.Close()

	n, err := store.Exec(context.Background(),
		"UPDATE users SET user_password = '"+store.Escape("it's")+"' WHERE user_name = 'carol'")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var u models.User
	require.NoError(t, db.Where("user_name = ?", "carol").First(&u).Error)
	assert.Equal(t, "it's", u.Password.String)
}

func TestClose(t *testing.T) {
	store := rowstore.New(setupTestDB(t))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.Query(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, rowstore.ErrClosed)

	_, err = store.Exec(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, rowstore.ErrClosed)
}

func TestOpenSQLite(t *testing.T) {
	c := options.New()
	defer c.Destroy()

	path := filepath.Join(t.TempDir(), "auth.db")
	_, err := options.ParseArgs(c, []string{"db=" + path})
	require.NoError(t, err)

	store, err := rowstore.Open(rowstore.DriverSQLite, c, rowstore.WithLogger(gormlog.New()))
	require.NoError(t, err)

	defer store.Close()

	assert.Equal(t, "sqlite "+path, store.HostInfo())
	assert.IsType(t, &gormlog.Logger{}, store.DB().Logger)
	require.NoError(t, store.DB().AutoMigrate(models.All()...))

	n, err := store.Exec(context.Background(), "INSERT INTO users (user_name) VALUES ('dave')")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpenErrors(t *testing.T) {
	c := options.New()
	defer c.Destroy()

	_, err := rowstore.Open("oracle", c)
	require.ErrorIs(t, err, rowstore.ErrDriver)

	_, err = rowstore.Open(rowstore.DriverMySQL, c)
	require.Error(t, err)
}

func TestEscape(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "alice", expected: "alice"},
		{name: "quote", input: "o'brien", expected: `o\'brien`},
		{name: "double quote", input: `say "hi"`, expected: `say \"hi\"`},
		{name: "backslash", input: `a\b`, expected: `a\\b`},
		{name: "control", input: "a\x00b\nc\rd\x1a", expected: `a\0b\nc\rd\Z`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rowstore.EscapeMySQL(tc.input))
		})
	}

	store := rowstore.New(setupTestDB(t))
	defer store.Close()

	assert.Equal(t, "o''brien", store.Escape("o'brien"))
}
