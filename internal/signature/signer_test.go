package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeypair(t *testing.T) *Keypair {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	kp, err := NewKeypair(base58.Encode(priv.Seed()))
	require.NoError(t, err)
	return kp
}

func TestSignDeterministic(t *testing.T) {
	kp := newTestKeypair(t)
	payload := Payload{
		"taskId":      "t1",
		"roundNumber": 3,
		"action":      "fetch-todo",
	}

	sig1, err := Sign(kp.SigningKey(), payload)
	require.NoError(t, err)
	sig2, err := Sign(kp.SigningKey(), payload)
	require.NoError(t, err)

	assert.Equal(t, sig1, sig2, "same payload and key must yield the same signature")
}

func TestSignChangesWithPayload(t *testing.T) {
	kp := newTestKeypair(t)

	sig1, err := Sign(kp.SigningKey(), Payload{"taskId": "t1", "roundNumber": 3})
	require.NoError(t, err)
	sig2, err := Sign(kp.SigningKey(), Payload{"taskId": "t1", "roundNumber": 4})
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2, "changing a payload field must change the signature")
}

func TestSignIndependentOfConstructionOrder(t *testing.T) {
	kp := newTestKeypair(t)

	a := Payload{}
	a["action"] = "fetch-todo"
	a["taskId"] = "t1"

	b := Payload{}
	b["taskId"] = "t1"
	b["action"] = "fetch-todo"

	sigA, err := Sign(kp.SigningKey(), a)
	require.NoError(t, err)
	sigB, err := Sign(kp.SigningKey(), b)
	require.NoError(t, err)

	assert.Equal(t, sigA, sigB, "key insertion order must not affect the canonical form")
}

func TestSignInvalidKey(t *testing.T) {
	_, err := Sign(ed25519.PrivateKey("short"), Payload{"taskId": "t1"})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	kp := newTestKeypair(t)
	payload := Payload{
		"taskId":      "t1",
		"roundNumber": 3,
		"action":      "fetch-todo",
	}

	sig, err := Sign(kp.SigningKey(), payload)
	require.NoError(t, err)

	ok, err := Verify(kp.PublicKey, payload, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tampered payload must not verify
	ok, err = Verify(kp.PublicKey, Payload{"taskId": "t2", "roundNumber": 3, "action": "fetch-todo"}, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanonicalizeNested(t *testing.T) {
	canonical, err := Canonicalize(Payload{
		"b": map[string]any{"y": 2, "x": 1},
		"a": "first",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"first","b":{"x":1,"y":2}}`, string(canonical))
}

func TestDigestStable(t *testing.T) {
	payload := Payload{"taskId": "t1", "roundNumber": 3, "action": "fetch-todo"}

	d1, err := Digest(payload)
	require.NoError(t, err)
	d2, err := Digest(payload)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64, "blake3 digest should be 32 bytes hex encoded")
}
