package testinfra

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	caCommonName     = "gioimport-test-ca"
	serverCommonName = "gioimport-test-server"
	certLifetime     = time.Hour
)

// CertBundle holds PEM-encoded material for a CA, a server and one client.
type CertBundle struct {
	CACert, CAKey         []byte
	ServerCert, ServerKey []byte
	ClientCert, ClientKey []byte
}

// CertPaths locates a bundle written by WriteToDir.
type CertPaths struct {
	CACert     string
	ServerCert string
	ServerKey  string
	ClientCert string
	ClientKey  string
}

// GenerateCertBundle issues a short-lived CA, a server certificate valid for
// hosts and a client certificate whose common name is clientUser. PostgreSQL's
// cert auth matches that name against the login role.
func GenerateCertBundle(hosts []string, clientUser string) (*CertBundle, error) {
	if clientUser == "" {
		clientUser = PostgresUser
	}

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate CA key: %w", err)
	}
	caTemplate := template(1, caCommonName)
	caTemplate.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	caTemplate.BasicConstraintsValid = true
	caTemplate.IsCA = true

	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("create CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, fmt.Errorf("parse CA certificate: %w", err)
	}

	serverTemplate := template(2, serverCommonName)
	serverTemplate.KeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment
	serverTemplate.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			serverTemplate.IPAddresses = append(serverTemplate.IPAddresses, ip)
		} else {
			serverTemplate.DNSNames = append(serverTemplate.DNSNames, h)
		}
	}
	serverCert, serverKey, err := issue("server", serverTemplate, caCert, caKey)
	if err != nil {
		return nil, err
	}

	clientTemplate := template(3, clientUser)
	clientTemplate.KeyUsage = x509.KeyUsageDigitalSignature
	clientTemplate.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	clientCert, clientKey, err := issue("client", clientTemplate, caCert, caKey)
	if err != nil {
		return nil, err
	}

	caKeyPEM, err := encodeKeyPEM(caKey)
	if err != nil {
		return nil, fmt.Errorf("encode CA key: %w", err)
	}

	return &CertBundle{
		CACert:     encodeCertPEM(caDER),
		CAKey:      caKeyPEM,
		ServerCert: serverCert,
		ServerKey:  serverKey,
		ClientCert: clientCert,
		ClientKey:  clientKey,
	}, nil
}

func template(serial int64, commonName string) *x509.Certificate {
	now := time.Now()
	return &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    now.Add(-5 * time.Minute),
		NotAfter:     now.Add(certLifetime),
	}
}

// issue signs tmpl with the CA and returns the certificate and a fresh key, both PEM.
func issue(role string, tmpl, ca *x509.Certificate, caKey *ecdsa.PrivateKey) ([]byte, []byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", role, err)
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca, &key.PublicKey, caKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s certificate: %w", role, err)
	}
	keyPEM, err := encodeKeyPEM(key)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s key: %w", role, err)
	}
	return encodeCertPEM(der), keyPEM, nil
}

// WriteToDir writes the bundle with owner-only permissions, which libpq
// requires for client keys.
func (b *CertBundle) WriteToDir(dir string) (*CertPaths, error) {
	paths := &CertPaths{
		CACert:     filepath.Join(dir, "ca.crt"),
		ServerCert: filepath.Join(dir, "server.crt"),
		ServerKey:  filepath.Join(dir, "server.key"),
		ClientCert: filepath.Join(dir, "client.crt"),
		ClientKey:  filepath.Join(dir, "client.key"),
	}

	files := map[string][]byte{
		paths.CACert:     b.CACert,
		paths.ServerCert: b.ServerCert,
		paths.ServerKey:  b.ServerKey,
		paths.ClientCert: b.ClientCert,
		paths.ClientKey:  b.ClientKey,
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0600); err != nil {
			return nil, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}

	return paths, nil
}

func encodeCertPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func encodeKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}
