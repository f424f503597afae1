// Package certs loads extra root certificates for clinic backends served with
// a campus-issued or self-signed certificate.
package certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CertManager manages the certificate files in a directory.
type CertManager struct {
	certDir string
}

// NewCertManager creates a new CertManager for the given directory.
func NewCertManager(certDir string) *CertManager {
	return &CertManager{certDir: certDir}
}

// LoadCertificates loads every certificate in .crt and .pem files under the
// cert directory. A file may hold several PEM blocks.
func (cm *CertManager) LoadCertificates() ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	err := filepath.WalkDir(cm.certDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".crt") && !strings.HasSuffix(name, ".pem") {
			return nil
		}
		found, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		certs = append(certs, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// Pool returns the system roots extended with the directory's certificates,
// and the certificates that are already expired at now.
func (cm *CertManager) Pool(now time.Time) (*x509.CertPool, []*x509.Certificate, error) {
	certs, err := cm.LoadCertificates()
	if err != nil {
		return nil, nil, err
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	var expired []*x509.Certificate
	for _, c := range certs {
		if IsExpired(c, now) {
			expired = append(expired, c)
		}
		pool.AddCert(c)
	}
	return pool, expired, nil
}

func loadFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	if len(certs) == 0 {
		return nil, errors.New("failed to parse certificate PEM")
	}
	return certs, nil
}

// IsExpired checks if a certificate is expired at now.
func IsExpired(cert *x509.Certificate, now time.Time) bool {
	return cert.NotAfter.Before(now)
}
