// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
	defaultTimeout      = 10 * time.Second
)

// Endpoint is the parsed form of the host option.
type Endpoint struct {
	Socket string
	Host   string
	Port   int
}

// ParseHost splits the host option. A leading '/' names a unix socket,
// "host:port" selects a port and a bare host uses the default port, which is
// reported as 0. The port is read like strtol, so garbage yields 0.
func ParseHost(host string) Endpoint {
	switch {
	case host == "":
		return Endpoint{}
	case strings.HasPrefix(host, "/"):
		return Endpoint{Socket: host}
	}

	name, port, ok := strings.Cut(host, ":")
	if !ok {
		return Endpoint{Host: host}
	}

	return Endpoint{Host: name, Port: options.ParseNumeric(port)}
}

// Description renders the endpoint for log records.
func (e Endpoint) Description(defaultPort int) string {
	if e.Socket != "" {
		return "Localhost via UNIX socket " + e.Socket
	}

	host := e.Host
	if host == "" {
		host = "localhost"
	}

	port := e.Port
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(host, strconv.Itoa(port)) + " via TCP/IP"
}

func required(c *options.Context) error {
	if !c.User.IsSet() {
		return ErrMissingUser
	}

	if !c.DB.IsSet() {
		return ErrMissingDB
	}

	return nil
}

// MySQL builds the go-sql-driver configuration for the session options.
// TLS options are registered with the driver under a per-context name.
func MySQL(c *options.Context) (*mysql.Config, error) {
	if err := required(c); err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User.String()
	cfg.Passwd = c.Passwd.String()
	cfg.DBName = c.DB.String()
	cfg.Timeout = defaultTimeout

	ep := ParseHost(c.Host.String())
	if ep.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = ep.Socket
	} else {
		host := ep.Host
		if host == "" {
			host = "localhost"
		}

		port := ep.Port
		if port == 0 {
			port = defaultMySQLPort
		}

		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	tlsName, err := registerTLS(c, ep.Host)
	if err != nil {
		return nil, err
	}

	cfg.TLSConfig = tlsName
	cfg.AllowFallbackToPlaintext = tlsName == TLSConfigName && preferTLS(c)

	return cfg, nil
}

// Create builds the MySQL Data Source Name from the session options.
func Create(c *options.Context) (string, error) {
	cfg, err := MySQL(c)
	if err != nil {
		return "", err
	}

	return cfg.FormatDSN(), nil
}

// Postgres builds a key/value connection string for the same options.
func Postgres(c *options.Context) (string, error) {
	if err := required(c); err != nil {
		return "", err
	}

	ep := ParseHost(c.Host.String())

	host := ep.Host
	if ep.Socket != "" {
		// libpq expects the socket directory
		host = ep.Socket[:strings.LastIndexByte(ep.Socket, '/')+1]
	}

	if host == "" {
		host = "localhost"
	}

	port := ep.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	mode, err := postgresSSLMode(c.SSLMode.String())
	if err != nil {
		return "", err
	}

	pairs := []string{
		"host=" + pgQuote(host),
		"port=" + strconv.Itoa(port),
		"user=" + pgQuote(c.User.String()),
		"password=" + pgQuote(c.Passwd.String()),
		"dbname=" + pgQuote(c.DB.String()),
		"sslmode=" + mode,
		"connect_timeout=" + strconv.Itoa(int(defaultTimeout/time.Second)),
	}

	files := []struct {
		key string
		opt *options.StringOption
	}{
		{"sslcert", &c.SSLCert},
		{"sslkey", &c.SSLKey},
		{"sslrootcert", &c.SSLCA},
	}

	for _, f := range files {
		if f.opt.IsSet() {
			pairs = append(pairs, f.key+"="+pgQuote(f.opt.String()))
		}
	}

	return strings.Join(pairs, " "), nil
}

// SQLite returns the database file named by the db option.
func SQLite(c *options.Context) (string, error) {
	if !c.DB.IsSet() {
		return "", ErrMissingDB
	}

	return c.DB.String(), nil
}

func pgQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(v) + "'"
}

func postgresSSLMode(mode string) (string, error) {
	switch strings.ToLower(mode) {
	case "":
		return "prefer", nil
	case "disabled":
		return "disable", nil
	case "preferred":
		return "prefer", nil
	case "required", "enforced":
		return "require", nil
	case "verify_ca":
		return "verify-ca", nil
	case "verify_identity":
		return "verify-full", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrSSLMode, mode)
	}
}
