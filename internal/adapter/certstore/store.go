package certstore

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bytemomo/sonar/internal/domain"

	"github.com/sirupsen/logrus"
)

var extensions = map[string]bool{".pem": true, ".crt": true, ".cer": true}

// Store reads the trusted root certificates of the proxy from a directory.
type Store struct {
	Dir string
	log *logrus.Entry
}

func New(dir string, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{Dir: dir, log: log.WithFields(logrus.Fields{"adapter": "certstore", "dir": dir})}
}

// Certificates returns every certificate found, sorted by name. An unset
// or missing directory yields none. Unreadable files are skipped.
func (s *Store) Certificates() ([]domain.Certificate, error) {
	if s.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		s.log.Debug("Certificate directory does not exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read certificate dir: %w", err)
	}

	var certs []domain.Certificate
	for _, e := range entries {
		if e.IsDir() || !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		found, err := loadFile(path)
		if err != nil {
			s.log.WithError(err).WithField("file", e.Name()).Warn("Skipping certificate file")
			continue
		}
		certs = append(certs, found...)
	}

	sort.Slice(certs, func(i, j int) bool {
		if certs[i].Name != certs[j].Name {
			return certs[i].Name < certs[j].Name
		}
		return certs[i].Thumbprint < certs[j].Thumbprint
	})
	return certs, nil
}

// loadFile accepts PEM bundles and single DER certificates.
func loadFile(path string) ([]domain.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var certs []domain.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		certs = append(certs, Describe(cert))
	}
	if len(certs) > 0 {
		return certs, nil
	}

	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return []domain.Certificate{Describe(cert)}, nil
}

// Describe returns the simple display name and thumbprint of cert.
func Describe(cert *x509.Certificate) domain.Certificate {
	return domain.Certificate{Name: SimpleName(cert), Thumbprint: Thumbprint(cert)}
}

// SimpleName prefers the subject common name, then the first DNS name,
// then the full subject.
func SimpleName(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	if len(cert.DNSNames) > 0 {
		return cert.DNSNames[0]
	}
	return cert.Subject.String()
}

// Thumbprint is the uppercase hex SHA-1 of the DER encoding.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
