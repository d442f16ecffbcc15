// Package auth signs exchange requests with RSA-PSS.
//
// Each request carries three headers: the key ID, a millisecond timestamp and
// a base64 signature over timestamp + method + path (query string excluded).
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Header names expected by the exchange.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// WebSocketPath is the path signed for the streaming handshake.
const WebSocketPath = "/trade-api/ws/v2"

var errNotRSA = errors.New("key is not an RSA private key")

// Signer produces authentication headers for one API key.
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
	now   func() time.Time
}

// NewSigner creates a Signer from an already parsed key.
func NewSigner(keyID string, key *rsa.PrivateKey) *Signer {
	return &Signer{keyID: keyID, key: key, now: time.Now}
}

// LoadSigner reads a PEM private key from disk.
func LoadSigner(keyID, privateKeyPath string) (*Signer, error) {
	if keyID == "" {
		return nil, errors.New("API key ID is required")
	}
	if privateKeyPath == "" {
		return nil, errors.New("private key path is required")
	}

	data, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return NewSigner(keyID, key), nil
}

// ParsePrivateKey decodes a PKCS#8 or PKCS#1 PEM block.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errNotRSA
		}
		return key, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// KeyID returns the API key ID.
func (s *Signer) KeyID() string {
	return s.keyID
}

// Headers returns signed headers for method and path.
func (s *Signer) Headers(method, path string) (http.Header, error) {
	ts := strconv.FormatInt(s.now().UnixMilli(), 10)

	signature, err := s.sign(ts + method + path)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set(HeaderKey, s.keyID)
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderSignature, signature)
	return h, nil
}

// SignRequest adds authentication headers to req in place.
func (s *Signer) SignRequest(req *http.Request) error {
	h, err := s.Headers(req.Method, req.URL.Path)
	if err != nil {
		return err
	}
	for k, v := range h {
		req.Header[k] = v
	}
	return nil
}

// WebSocketHeaders returns signed headers for the streaming handshake.
func (s *Signer) WebSocketHeaders() (http.Header, error) {
	return s.Headers(http.MethodGet, WebSocketPath)
}

func (s *Signer) sign(message string) (string, error) {
	hashed := sha256.Sum256([]byte(message))

	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}
