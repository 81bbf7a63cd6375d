package config

import (
	"net"
	"strconv"
)

// DB holds the database connection settings. They are turned into option
// arguments, so the pam_mysql style options override them.
type DB struct {
	Host     string
	Port     int `validate:"gte=0,lte=65535"`
	Socket   string
	User     string
	Password string
	Name     string
	SSLMode  string `validate:"omitempty,oneof=disabled preferred required verify_ca verify_identity"`
}

// Args returns the option arguments for the set fields.
func (d DB) Args() []string {
	var args []string

	switch {
	case d.Socket != "":
		args = append(args, "host="+d.Socket)
	case d.Host != "" && d.Port != 0:
		args = append(args, "host="+net.JoinHostPort(d.Host, strconv.Itoa(d.Port)))
	case d.Host != "":
		args = append(args, "host="+d.Host)
	}

	for _, kv := range [][2]string{
		{"user", d.User},
		{"passwd", d.Password},
		{"db", d.Name},
		{"ssl_mode", d.SSLMode},
	} {
		if kv[1] != "" {
			args = append(args, kv[0]+"="+kv[1])
		}
	}

	return args
}
