package auth

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome is the result of an account operation.
type Outcome int

// Operation outcomes. The numeric values double as process exit codes.
const (
	OutcomeSuccess Outcome = iota
	OutcomeUserUnknown
	OutcomeAuthErr
	OutcomeAuthInfoUnavail
	OutcomeServiceErr
	OutcomeAcctExpired
	OutcomeNewAuthTokReqd
	OutcomeAuthTokExpired
	OutcomeAuthTokErr
	OutcomeAuthTokRecoveryErr
	OutcomeAuthTokLockBusy
	OutcomePermDenied
	OutcomeTryAgain
)

var outcomeNames = [...]string{
	OutcomeSuccess:            "success",
	OutcomeUserUnknown:        "user_unknown",
	OutcomeAuthErr:            "auth_err",
	OutcomeAuthInfoUnavail:    "authinfo_unavail",
	OutcomeServiceErr:         "service_err",
	OutcomeAcctExpired:        "acct_expired",
	OutcomeNewAuthTokReqd:     "new_authtok_reqd",
	OutcomeAuthTokExpired:     "authtok_expired",
	OutcomeAuthTokErr:         "authtok_err",
	OutcomeAuthTokRecoveryErr: "authtok_recovery_err",
	OutcomeAuthTokLockBusy:    "authtok_lock_busy",
	OutcomePermDenied:         "perm_denied",
	OutcomeTryAgain:           "try_again",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}

	return outcomeNames[o]
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	return int(o)
}

var (
	outcomes     *prometheus.CounterVec //nolint:gochecknoglobals
	outcomesOnce sync.Once              //nolint:gochecknoglobals
)

// observe counts an operation result.
func observe(operation string, o Outcome) {
	outcomesOnce.Do(func() {
		outcomes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mysqlauth_auth_outcomes_total",
				Help: "Number of account operations, differentiated by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		)
	})

	outcomes.WithLabelValues(operation, o.String()).Inc()
}
