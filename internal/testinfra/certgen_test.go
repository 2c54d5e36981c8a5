package testinfra

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateServerCerts(t *testing.T) {
	certs, err := GenerateServerCerts([]string{"localhost", "127.0.0.1"})
	require.NoError(t, err)

	ca := parseCert(t, certs.CACert)
	server := parseCert(t, certs.ServerCert)

	assert.True(t, ca.IsCA)
	assert.Equal(t, "hellodb-test-ca", ca.Subject.CommonName)
	assert.False(t, server.IsCA)
	assert.Contains(t, server.DNSNames, "localhost")
	require.Len(t, server.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", server.IPAddresses[0].String())

	pool := x509.NewCertPool()
	pool.AddCert(ca)
	_, err = server.Verify(x509.VerifyOptions{
		Roots:     pool,
		DNSName:   "localhost",
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	assert.NoError(t, err, "server cert should chain to CA")

	_, err = tls.X509KeyPair(certs.ServerCert, certs.ServerKey)
	assert.NoError(t, err, "server key should match certificate")
}

func TestGenerateServerCerts_ForeignCA(t *testing.T) {
	a, err := GenerateServerCerts([]string{"localhost"})
	require.NoError(t, err)
	b, err := GenerateServerCerts([]string{"localhost"})
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(parseCert(t, a.CACert))

	_, err = parseCert(t, b.ServerCert).Verify(x509.VerifyOptions{Roots: pool})
	assert.Error(t, err, "cert from different CA should not verify")
}

func TestServerCerts_WriteToDir(t *testing.T) {
	certs, err := GenerateServerCerts([]string{"localhost"})
	require.NoError(t, err)

	paths, err := certs.WriteToDir(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{paths.CACert, paths.ServerCert, paths.ServerKey} {
		info, err := os.Stat(p)
		require.NoError(t, err, "file should exist: %s", p)
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "file permissions for %s", p)
		}
	}
}

func TestWriteInitScript(t *testing.T) {
	path, err := writeInitScript(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE greetings")
	assert.Contains(t, string(data), AppUser)
}

func parseCert(t *testing.T, pemData []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(pemData)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}
