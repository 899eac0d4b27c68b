package web

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// certValidity must stay under the 14 days browsers accept for
// serverCertificateHashes.
const certValidity = 10 * 24 * time.Hour

// CertInfo holds generated certificate information.
type CertInfo struct {
	TLSConfig *tls.Config
	DER       []byte   // DER-encoded certificate
	Hash      [32]byte // SHA-256 hash for serverCertificateHashes
}

// GenerateSelfSignedCert generates the WebTransport certificate for host.
// Browsers pin it by hash, so it names host and localhost and nothing
// chains to it.
func GenerateSelfSignedCert(host string) (*CertInfo, error) {
	// serverCertificateHashes only accepts ECDSA P-256
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 63))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute)
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "webdesk", Organization: []string{"webdesk"}},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = append(template.IPAddresses, ip)
	} else if host != "" && host != "localhost" {
		template.DNSNames = append(template.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &CertInfo{
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{{
				Certificate: [][]byte{der},
				PrivateKey:  priv,
				Leaf:        leaf,
			}},
			MinVersion: tls.VersionTLS13,
		},
		DER:  der,
		Hash: sha256.Sum256(der),
	}, nil
}
