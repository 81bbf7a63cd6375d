// Package auth runs the account operations of the authenticator against a
// row store.
//
// A Session owns the option Context of one caller and, lazily, a Store
// connection. Each operation mirrors one step of a login stack:
//   - Authenticate checks a password, optionally reusing a token supplied by
//     an earlier step before prompting
//   - AcctMgmt reads the status column and reports expired accounts or
//     passwords
//   - ChangePassword verifies the current password and stores a new one in
//     the configured scheme
//   - OpenSession and CloseSession only write audit records
//
// Every operation returns an Outcome, the stable result callers map to their
// own codes, together with the underlying error when there is one. When the
// sqllog option is set, outcomes are also recorded in the log table.
//
// Example usage:
//
//	s := auth.NewSession(auth.Config{Open: open, Prompter: prompter})
//	defer s.Close()
//
//	if err := s.Configure([]string{"config_file=/etc/pam-mysql.conf"}); err != nil {
//	    return err
//	}
//
//	outcome, err := s.Authenticate(ctx, auth.Request{User: "alice"})
package auth
