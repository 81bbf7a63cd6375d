package dsn

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/options"
)

// TLSConfigName is the driver registration used for ssl_* options.
const TLSConfigName = "mysqlauth"

func hasTLSFiles(c *options.Context) bool {
	return c.SSLCert.IsSet() || c.SSLKey.IsSet() || c.SSLCA.IsSet() ||
		c.SSLCAPath.IsSet() || c.SSLCipher.IsSet()
}

// preferTLS reports whether the connection may go on without encryption
// when the server does not offer it.
func preferTLS(c *options.Context) bool {
	mode := strings.ToLower(c.SSLMode.String())

	return mode == "" || mode == "preferred"
}

// registerTLS maps ssl_mode and the certificate options onto the driver's
// tls parameter. Without certificate options the driver's built-in modes are
// used; otherwise a tls.Config is registered under TLSConfigName.
func registerTLS(c *options.Context, serverName string) (string, error) {
	mode := strings.ToLower(c.SSLMode.String())

	switch mode {
	case "disabled":
		return "false", nil
	case "", "preferred":
		if !hasTLSFiles(c) {
			if mode == "" {
				return "", nil
			}

			return "preferred", nil
		}
	case "required", "enforced", "verify_ca", "verify_identity":
	default:
		return "", fmt.Errorf("%w: %q", ErrSSLMode, c.SSLMode.String())
	}

	cfg, err := TLSConfig(c, mode, serverName)
	if err != nil {
		return "", err
	}

	if err := mysql.RegisterTLSConfig(TLSConfigName, cfg); err != nil {
		return "", fmt.Errorf("register tls config: %w", err)
	}

	return TLSConfigName, nil
}

// TLSConfig builds the client TLS settings. Only verify_identity checks the
// server name; verify_ca checks the chain alone and other modes encrypt
// without verification.
func TLSConfig(c *options.Context, mode, serverName string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12} //nolint:gosec

	roots, err := rootPool(c.SSLCA.String(), c.SSLCAPath.String())
	if err != nil {
		return nil, err
	}

	cfg.RootCAs = roots

	if c.SSLCert.IsSet() != c.SSLKey.IsSet() {
		return nil, fmt.Errorf("%w: ssl_cert and ssl_key must be set together", ErrTLSFiles)
	}

	if c.SSLCert.IsSet() {
		pair, err := tls.LoadX509KeyPair(c.SSLCert.String(), c.SSLKey.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLSFiles, err)
		}

		cfg.Certificates = []tls.Certificate{pair}
	}

	if c.SSLCipher.IsSet() {
		suites, err := cipherSuites(c.SSLCipher.String())
		if err != nil {
			return nil, err
		}

		cfg.CipherSuites = suites
	}

	switch mode {
	case "verify_identity":
		cfg.ServerName = serverName
	case "verify_ca":
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = verifyChain(roots)
	default:
		cfg.InsecureSkipVerify = true
	}

	return cfg, nil
}

func rootPool(caFile, caPath string) (*x509.CertPool, error) {
	if caFile == "" && caPath == "" {
		return nil, nil //nolint:nilnil
	}

	pool := x509.NewCertPool()

	var files []string

	if caFile != "" {
		files = append(files, caFile)
	}

	if caPath != "" {
		entries, err := os.ReadDir(caPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLSFiles, err)
		}

		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(caPath, e.Name()))
			}
		}
	}

	for i, name := range files {
		pem, err := os.ReadFile(name) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLSFiles, err)
		}

		// the explicit ssl_ca file must parse, stray files in ssl_capath may not
		if !pool.AppendCertsFromPEM(pem) && i == 0 && caFile != "" {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrTLSFiles, name)
		}
	}

	return pool, nil
}

func verifyChain(roots *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(raw [][]byte, _ [][]*x509.Certificate) error {
		if len(raw) == 0 {
			return fmt.Errorf("%w: server sent no certificate", ErrTLSFiles)
		}

		certs := make([]*x509.Certificate, len(raw))

		for i, der := range raw {
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return fmt.Errorf("parse server certificate: %w", err)
			}

			certs[i] = cert
		}

		opts := x509.VerifyOptions{Roots: roots, Intermediates: x509.NewCertPool()}
		for _, cert := range certs[1:] {
			opts.Intermediates.AddCert(cert)
		}

		if _, err := certs[0].Verify(opts); err != nil {
			return fmt.Errorf("verify server certificate: %w", err)
		}

		return nil
	}
}

// cipherSuites resolves a colon separated list of IANA suite names.
func cipherSuites(list string) ([]uint16, error) {
	known := make(map[string]uint16)

	for _, s := range append(tls.CipherSuites(), tls.InsecureCipherSuites()...) {
		known[s.Name] = s.ID
	}

	var out []uint16

	for _, name := range strings.Split(list, ":") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCipher, name)
		}

		out = append(out, id)
	}

	return out, nil
}
