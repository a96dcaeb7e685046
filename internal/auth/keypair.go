package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/troindx/oxidize/internal/security"
)

// rsaKeyBits is the modulus size of generated keypairs. RS512 tokens are
// signed with 2048-bit keys.
const rsaKeyBits = 2048

// ErrKeyGeneration is returned when keypair generation or encoding fails.
var ErrKeyGeneration = errors.New("failed to generate keypair")

// GenerateKeyPair produces a fresh RSA-2048 keypair for a user. The public
// half is returned as a PKIX PEM string meant to be persisted server-side.
// The private half is returned inside a SecureString: it is handed to the
// caller exactly once and never stored, so the caller must wipe it after
// delivery. There is no way to recover a lost private key.
func GenerateKeyPair() (string, *security.SecureString, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privDER,
	})
	security.WipeBytes(privDER)

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		security.WipeBytes(privPEM)
		return "", nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	return string(pubPEM), security.NewSecureString(privPEM), nil
}
