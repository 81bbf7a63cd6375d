package models

import (
	"database/sql"
	"time"
)

// User status bits stored in the status column.
const (
	// StatusExpired marks the account itself as expired.
	StatusExpired = 0x1
	// StatusAuthTokExpired marks the password as expired.
	StatusAuthTokExpired = 0x2
	// StatusNullPasswd is derived from a NULL password column, never stored.
	StatusNullPasswd = 0x4
)

// User represents an account row checked by the authenticator.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the login name matched by usercolumn.
	Name string `gorm:"column:user_name;unique;size:100;not null"`
	// Password holds the stored credential in the configured scheme. NULL
	// means no password was ever set.
	Password sql.NullString `gorm:"column:user_password;size:255"`
	// Status holds the StatusExpired and StatusAuthTokExpired bits. NULL
	// counts as expired.
	Status sql.NullInt64 `gorm:"column:status;default:0"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}
