package signature

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// Keypair holds one identity role's ed25519 keys. The signing key is
// exclusively owned and never serialized back out; only the base58
// public key is shared.
type Keypair struct {
	PublicKey  string
	signingKey ed25519.PrivateKey
}

// keypairFile matches the on-disk keypair JSON written by the keypair
// generator: base58-encoded 32-byte seed and 32-byte public key.
type keypairFile struct {
	Private string `json:"private"`
	Public  string `json:"public"`
}

// SigningKey returns the private signing key for use with Sign.
func (k *Keypair) SigningKey() ed25519.PrivateKey {
	return k.signingKey
}

// NewKeypair constructs a Keypair from a base58 private key. The
// private key may be a 32-byte seed (the NaCl encoding used by the
// keypair files) or a full 64-byte ed25519 private key.
func NewKeypair(privateB58 string) (*Keypair, error) {
	raw, err := base58.Decode(privateB58)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeKeypairInvalid, "decode private key", err)
	}

	var signingKey ed25519.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		signingKey = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		signingKey = ed25519.PrivateKey(raw)
	default:
		return nil, errors.New(errors.ErrCodeKeypairInvalid,
			fmt.Sprintf("private key must be %d or %d bytes, got %d",
				ed25519.SeedSize, ed25519.PrivateKeySize, len(raw)))
	}

	public := signingKey.Public().(ed25519.PublicKey)
	return &Keypair{
		PublicKey:  base58.Encode(public),
		signingKey: signingKey,
	}, nil
}

// LoadKeypair reads a keypair JSON file ({"private": ..., "public": ...})
// and returns the parsed keypair. When the file carries a public key it
// must match the one derived from the private key.
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewKeypairNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeKeypairInvalid, fmt.Sprintf("read keypair file %s", path), err)
	}

	var file keypairFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeKeypairInvalid, fmt.Sprintf("parse keypair file %s", path), err)
	}
	if file.Private == "" {
		return nil, errors.New(errors.ErrCodeKeypairInvalid, fmt.Sprintf("keypair file %s has no private key", path))
	}

	kp, err := NewKeypair(file.Private)
	if err != nil {
		return nil, err
	}

	if file.Public != "" && file.Public != kp.PublicKey {
		return nil, errors.New(errors.ErrCodeKeypairInvalid,
			fmt.Sprintf("keypair file %s: public key does not match private key", path))
	}

	return kp, nil
}
