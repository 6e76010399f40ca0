package signature

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// Sign produces a base58 detached signature over the canonical form of
// the payload. The same logical payload always yields the same
// signature for a given key; changing any payload field changes it.
func Sign(signingKey ed25519.PrivateKey, payload Payload) (string, error) {
	if len(signingKey) != ed25519.PrivateKeySize {
		return "", errors.New(errors.ErrCodeSignKeyInvalid, "signing key has wrong length")
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSignCanonicalize, "canonicalize payload", err)
	}

	return base58.Encode(ed25519.Sign(signingKey, canonical)), nil
}

// Verify checks a base58 detached signature against the canonical form
// of the payload and a base58 public key.
func Verify(publicKeyB58 string, payload Payload, signatureB58 string) (bool, error) {
	publicKey, err := base58.Decode(publicKeyB58)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeSignKeyInvalid, "decode public key", err)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false, errors.New(errors.ErrCodeSignKeyInvalid, "public key has wrong length")
	}

	sig, err := base58.Decode(signatureB58)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeSignCanonicalize, "decode signature", err)
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeSignCanonicalize, "canonicalize payload", err)
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey), canonical, sig), nil
}
