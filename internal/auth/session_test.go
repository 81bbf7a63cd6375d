package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/auth"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/models"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/db/rowstore"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

// testStore keeps the shared in-memory database open when a session closes it.
type testStore struct {
	*rowstore.Store

	closed int
}

func (s *testStore) Close() error {
	s.closed++

	return nil
}

// setupTestDB creates an in-memory SQLite database seeded with test users.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	users := []models.User{
		{Name: "alice", Password: sql.NullString{String: "secret", Valid: true}},
		{Name: "expired", Password: sql.NullString{String: "secret", Valid: true},
			Status: sql.NullInt64{Int64: models.StatusExpired, Valid: true}},
		{Name: "stale", Password: sql.NullString{String: "secret", Valid: true},
			Status: sql.NullInt64{Int64: models.StatusAuthTokExpired, Valid: true}},
		{Name: "fresh", Status: sql.NullInt64{Int64: models.StatusAuthTokExpired, Valid: true}},
		{Name: "nostatus", Password: sql.NullString{String: "secret", Valid: true}},
		{Name: "nopass"},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Exec("UPDATE users SET status = NULL WHERE user_name = ?", "nostatus").Error)

	return db
}

// prompts answers prompts in order and records the questions.
type prompts struct {
	answers [][]byte
	asked   []string
}

func (p *prompts) Prompt(_ context.Context, message string, echo bool) ([]byte, error) {
	p.asked = append(p.asked, message)

	if echo {
		return nil, errors.New("unexpected echoed prompt")
	}

	if len(p.answers) == 0 {
		return nil, nil
	}

	answer := p.answers[0]
	p.answers = p.answers[1:]

	return answer, nil
}

func answers(values ...string) *prompts {
	p := &prompts{}
	for _, v := range values {
		p.answers = append(p.answers, []byte(v))
	}

	return p
}

// newSession returns a configured session on db, with extra arguments applied
// after the table layout.
func newSession(t *testing.T, db *gorm.DB, p auth.Prompter, args ...string) (*auth.Session, *testStore) {
	t.Helper()

	store := &testStore{Store: rowstore.New(db)}

	s := auth.NewSession(auth.Config{
		Open:     func(*options.Context) (auth.Store, error) { return store, nil },
		Prompter: p,
		PID:      4242,
	})
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Configure(append(models.Args(), args...)))

	return s, store
}

func TestAuthenticate(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		req     auth.Request
		prompts *prompts
		want    auth.Outcome
		wantErr error
		asked   int
	}{
		{
			name:    "supplied token matches",
			req:     auth.Request{User: "alice", AuthTok: []byte("secret")},
			prompts: answers(),
			want:    auth.OutcomeSuccess,
		},
		{
			name:    "try_first_pass falls back to prompt",
			req:     auth.Request{User: "alice", AuthTok: []byte("wrong")},
			prompts: answers("secret"),
			want:    auth.OutcomeSuccess,
			asked:   1,
		},
		{
			name:    "no token prompts",
			req:     auth.Request{User: "alice"},
			prompts: answers("secret"),
			want:    auth.OutcomeSuccess,
			asked:   1,
		},
		{
			name:    "prompted password mismatches",
			req:     auth.Request{User: "alice"},
			prompts: answers("nope"),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrMismatch,
			asked:   1,
		},
		{
			name:    "use_first_pass mismatch is final",
			args:    []string{"use_first_pass"},
			req:     auth.Request{User: "alice", AuthTok: []byte("wrong")},
			prompts: answers("secret"),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrMismatch,
		},
		{
			name:    "use_first_pass unknown user",
			args:    []string{"use_first_pass"},
			req:     auth.Request{User: "mallory", AuthTok: []byte("secret")},
			prompts: answers(),
			want:    auth.OutcomeUserUnknown,
			wantErr: auth.ErrNoSuchUser,
		},
		{
			name:    "prompt only",
			args:    []string{"try_first_pass=0"},
			req:     auth.Request{User: "alice", AuthTok: []byte("secret")},
			prompts: answers("secret"),
			want:    auth.OutcomeSuccess,
			asked:   1,
		},
		{
			name:    "unknown user after prompt",
			req:     auth.Request{User: "mallory"},
			prompts: answers("secret"),
			want:    auth.OutcomeUserUnknown,
			wantErr: auth.ErrNoSuchUser,
			asked:   1,
		},
		{
			name:    "no answer",
			req:     auth.Request{User: "alice"},
			prompts: answers(),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrNoAuthTok,
			asked:   1,
		},
		{
			name:    "silent request does not prompt",
			req:     auth.Request{User: "alice", Silent: true},
			prompts: answers("secret"),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrNoAuthTok,
		},
		{
			name:    "silent request after failed first pass",
			req:     auth.Request{User: "alice", AuthTok: []byte("wrong"), Silent: true},
			prompts: answers("secret"),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrNoAuthTok,
		},
		{
			name:    "silent request with matching token",
			req:     auth.Request{User: "alice", AuthTok: []byte("secret"), Silent: true},
			prompts: answers(),
			want:    auth.OutcomeSuccess,
		},
		{
			name:    "missing user",
			req:     auth.Request{},
			prompts: answers(),
			want:    auth.OutcomeUserUnknown,
			wantErr: auth.ErrNoUser,
		},
		{
			name:    "where clause filters",
			args:    []string{"where=status = 1"},
			req:     auth.Request{User: "alice", AuthTok: []byte("secret")},
			prompts: answers("secret"),
			want:    auth.OutcomeUserUnknown,
			wantErr: auth.ErrNoSuchUser,
			asked:   1,
		},
		{
			name:    "select template",
			args:    []string{"select=SELECT user_password FROM users WHERE user_name = '%s' AND status = 0"},
			req:     auth.Request{User: "alice", AuthTok: []byte("secret")},
			prompts: answers(),
			want:    auth.OutcomeSuccess,
		},
		{
			name:    "ambiguous result",
			args:    []string{"select=SELECT user_password FROM users WHERE user_password = 'secret'"},
			req:     auth.Request{User: "alice", AuthTok: []byte("secret")},
			prompts: answers(),
			want:    auth.OutcomeServiceErr,
			wantErr: auth.ErrAmbiguousUser,
		},
		{
			name:    "null password never matches by default",
			req:     auth.Request{User: "nopass"},
			prompts: answers(""),
			want:    auth.OutcomeAuthErr,
			wantErr: auth.ErrMismatch,
			asked:   1,
		},
		{
			name:    "quote in user name is escaped",
			req:     auth.Request{User: "alice' OR '1'='1"},
			prompts: answers("secret"),
			want:    auth.OutcomeUserUnknown,
			wantErr: auth.ErrNoSuchUser,
			asked:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			s, _ := newSession(t, db, tc.prompts, tc.args...)

			got, err := s.Authenticate(context.Background(), tc.req)

			assert.Equal(t, tc.want, got, "outcome %s", got)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Len(t, tc.prompts.asked, tc.asked)

			for _, q := range tc.prompts.asked {
				assert.Equal(t, auth.PromptPassword, q)
			}
		})
	}
}

func TestAuthenticateKeepsPromptedToken(t *testing.T) {
	db := setupTestDB(t)
	s, _ := newSession(t, db, answers("secret"))

	assert.Nil(t, s.AuthTok())

	got, err := s.Authenticate(context.Background(), auth.Request{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeSuccess, got)
	assert.Equal(t, []byte("secret"), s.AuthTok())

	require.NoError(t, s.Close())
	assert.Nil(t, s.AuthTok())
}

func TestAuthenticateNullPolicy(t *testing.T) {
	db := setupTestDB(t)
	store := &testStore{Store: rowstore.New(db)}

	s := auth.NewSession(auth.Config{
		Open:             func(*options.Context) (auth.Store, error) { return store, nil },
		AllowNullAuthTok: true,
	})
	defer s.Close()

	require.NoError(t, s.Configure(models.Args()))

	got, err := s.Authenticate(context.Background(), auth.Request{User: "nopass"})
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeSuccess, got)
}

func TestAuthenticateOpenFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want auth.Outcome
	}{
		{name: "database unreachable", err: rowstore.ErrDatabase, want: auth.OutcomeAuthInfoUnavail},
		{name: "bad configuration", err: errors.New("missing db"), want: auth.OutcomeServiceErr},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := auth.NewSession(auth.Config{
				Open: func(*options.Context) (auth.Store, error) { return nil, tc.err },
			})
			defer s.Close()

			got, err := s.Authenticate(context.Background(), auth.Request{User: "alice", AuthTok: []byte("x")})
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAcctMgmt(t *testing.T) {
	testCases := []struct {
		user    string
		want    auth.Outcome
		wantErr error
	}{
		{user: "alice", want: auth.OutcomeSuccess},
		{user: "expired", want: auth.OutcomeAcctExpired, wantErr: auth.ErrAccountExpired},
		{user: "stale", want: auth.OutcomeAuthTokExpired, wantErr: auth.ErrAuthTokExpired},
		{user: "fresh", want: auth.OutcomeNewAuthTokReqd, wantErr: auth.ErrAuthTokExpired},
		{user: "nostatus", want: auth.OutcomeAcctExpired, wantErr: auth.ErrAccountExpired},
		{user: "nopass", want: auth.OutcomeSuccess},
		{user: "mallory", want: auth.OutcomeUserUnknown, wantErr: auth.ErrNoSuchUser},
		{user: "", want: auth.OutcomeUserUnknown, wantErr: auth.ErrNoUser},
	}

	for _, tc := range testCases {
		t.Run(tc.user, func(t *testing.T) {
			db := setupTestDB(t)
			s, _ := newSession(t, db, nil)

			got, err := s.AcctMgmt(context.Background(), auth.Request{User: tc.user})

			assert.Equal(t, tc.want, got, "outcome %s", got)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAcctMgmtDefaultStatusColumn(t *testing.T) {
	db := setupTestDB(t)
	store := &testStore{Store: rowstore.New(db)}

	s := auth.NewSession(auth.Config{
		Open: func(*options.Context) (auth.Store, error) { return store, nil },
	})
	defer s.Close()

	require.NoError(t, s.Configure([]string{
		"table=users", "usercolumn=user_name", "passwdcolumn=user_password",
	}))

	// the default status column is the literal 0
	got, err := s.AcctMgmt(context.Background(), auth.Request{User: "expired"})
	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeSuccess, got)
}

func TestDisconnectEveryOp(t *testing.T) {
	db := setupTestDB(t)
	s, store := newSession(t, db, nil)

	_, err := s.AcctMgmt(context.Background(), auth.Request{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 0, store.closed)

	require.NoError(t, s.Configure([]string{"disconnect_every_op"}))
	assert.Equal(t, 1, store.closed, "changed options drop the connection")

	_, err = s.AcctMgmt(context.Background(), auth.Request{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.closed)
}

func TestConfigureReadsConfigFile(t *testing.T) {
	db := setupTestDB(t)
	s, _ := newSession(t, db, nil, "config_file=/nonexistent/pam_mysql.conf")

	// unreadable files are logged, not fatal
	assert.Equal(t, "/nonexistent/pam_mysql.conf", s.Options().ConfigFile.String())
	assert.Equal(t, "users", s.Options().Table.String())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", auth.OutcomeSuccess.String())
	assert.Equal(t, "authtok_recovery_err", auth.OutcomeAuthTokRecoveryErr.String())
	assert.Equal(t, "try_again", auth.OutcomeTryAgain.String())
	assert.Equal(t, "unknown", auth.Outcome(-1).String())
	assert.Equal(t, 0, auth.OutcomeSuccess.ExitCode())
	assert.Equal(t, 2, auth.OutcomeAuthErr.ExitCode())
}
