package models

import "time"

// AuthLog is one audit record written when sqllog is enabled.
type AuthLog struct {
	ID       uint64    `gorm:"primaryKey"`
	Message  string    `gorm:"column:msg;size:255;not null"`
	User     string    `gorm:"column:username;size:100;not null"`
	Host     string    `gorm:"column:host;size:255;not null"`
	RHost    string    `gorm:"column:rhost;size:255"`
	PID      uint64    `gorm:"column:pid"`
	LoggedAt time.Time `gorm:"column:logtime;not null"`
}

// TableName specifies the database table name for the AuthLog model.
func (AuthLog) TableName() string {
	return "pam_log"
}
