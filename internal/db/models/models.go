// Package models contains the table layout the authenticator queries by
// default, used to create schemas and to seed tests.
package models

// All lists every model for migrations.
func All() []any {
	return []any{&User{}, &AuthLog{}}
}

// Args returns the option arguments that point the authenticator at the
// tables created from these models.
func Args() []string {
	return []string{
		"table=" + User{}.TableName(),
		"usercolumn=user_name",
		"passwdcolumn=user_password",
		"statcolumn=status",
		"logtable=" + AuthLog{}.TableName(),
		"logmsgcolumn=msg",
		"logusercolumn=username",
		"loghostcolumn=host",
		"logrhostcolumn=rhost",
		"logpidcolumn=pid",
		"logtimecolumn=logtime",
	}
}
