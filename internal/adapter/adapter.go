package adapter

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// A MakeTLSConfig returns [*tls.Config].
//
// All args are the filepaths and may be empty,
// the system roots are used without a CA and no client certificate is sent
// without a cert and key pair.
func MakeTLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "adapter.MakeTLSConfig"

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if ca != "" {
		caCert, err := os.ReadFile(ca)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read CA certificate file: %w", op, err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("%s: %s", op, "failed to parse CA certificate")
		}
		cfg.RootCAs = caCertPool
	}

	if (cert == "") != (key == "") {
		return nil, fmt.Errorf("%s: %w", op, errors.New("cert and key must be set together"))
	}

	if cert != "" {
		clientCert, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cfg.Certificates = []tls.Certificate{clientCert}
	}

	return cfg, nil
}
