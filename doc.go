// Package main provides the mysqlauth command. It checks passwords stored in
// SQL tables the way pam_mysql does: the same option names, configuration
// file format, password schemes and audit records, for MySQL, PostgreSQL and
// SQLite databases. Account operations exit with a status derived from their
// outcome, so the command can back pam_exec or similar hooks.
package main
