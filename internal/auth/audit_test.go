package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
)

type auditRecord struct {
	Message string `gorm:"column:msg"`
	User    string `gorm:"column:username"`
	Host    string `gorm:"column:host"`
	RHost   string `gorm:"column:rhost"`
	PID     string `gorm:"column:pid"`
}

func auditRecords(t *testing.T, db *gorm.DB) []auditRecord {
	t.Helper()

	var records []auditRecord
	require.NoError(t, db.Raw("SELECT msg, username, host, COALESCE(rhost, '') AS rhost, "+
		"COALESCE(CAST(pid AS TEXT), '') AS pid FROM pam_log ORDER BY id").Scan(&records).Error)

	return records
}

func TestAudit(t *testing.T) {
	db := setupTestDB(t)
	s, _ := newSession(t, db, answers("wrong", "secret"), "sqllog")
	ctx := context.Background()

	_, err := s.Authenticate(ctx, auth.Request{User: "alice", RHost: "10.0.0.1"})
	require.ErrorIs(t, err, auth.ErrMismatch)

	_, err = s.Authenticate(ctx, auth.Request{User: "alice", RHost: "10.0.0.1"})
	require.NoError(t, err)

	_, err = s.OpenSession(ctx, auth.Request{User: "alice"})
	require.NoError(t, err)

	_, err = s.AcctMgmt(ctx, auth.Request{User: "alice"})
	require.NoError(t, err)

	_, err = s.ChangePassword(ctx, auth.Request{User: "alice", Privileged: true, AuthTok: []byte("n3w")})
	require.NoError(t, err)

	_, err = s.CloseSession(ctx, auth.Request{User: "alice"})
	require.NoError(t, err)

	records := auditRecords(t, db)
	require.Len(t, records, 9)

	messages := make([]string, 0, len(records))
	for _, r := range records {
		messages = append(messages, r.Message)
	}

	assert.Equal(t, []string{
		"AUTHENTICATION FAILURE (FIRST_PASS)",
		"AUTHENTICATION FAILURE",
		"AUTHENTICATION FAILURE (FIRST_PASS)",
		"AUTHENTICATION SUCCESS",
		"OPEN SESSION",
		"QUERYING SUCCESS",
		"QUERYING SUCCESS",
		"ALTERATION SUCCESS",
		"CLOSE SESSION",
	}, messages)

	assert.Equal(t, "alice", records[0].User)
	assert.Equal(t, "sqlite", records[0].Host)
	assert.Equal(t, "10.0.0.1", records[0].RHost)
	assert.Equal(t, "4242", records[0].PID)
	assert.Equal(t, "(unknown)", records[4].RHost)

	var stamped int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM pam_log WHERE logtime IS NOT NULL").Scan(&stamped).Error)
	assert.Equal(t, int64(9), stamped)
}

func TestAuditOptionalColumns(t *testing.T) {
	db := setupTestDB(t)
	s, _ := newSession(t, db, nil, "sqllog")

	opts := s.Options()
	opts.LogRHostColumn.Clear()
	opts.LogPIDColumn.Clear()

	_, err := s.OpenSession(context.Background(), auth.Request{User: "alice", RHost: "10.0.0.1"})
	require.NoError(t, err)

	records := auditRecords(t, db)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].RHost)
	assert.Empty(t, records[0].PID)
}

func TestAuditMissingColumn(t *testing.T) {
	db := setupTestDB(t)
	s, _ := newSession(t, db, nil, "sqllog")

	s.Options().LogTimeColumn.Clear()

	// audit failures are logged, the operation still succeeds
	got, err := s.OpenSession(context.Background(), auth.Request{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeSuccess, got)
	assert.Empty(t, auditRecords(t, db))
}
