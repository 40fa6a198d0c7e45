// Package security signs snapshot payloads so the dashboard can verify that
// gas data was produced by this service and not altered in transit.
package security

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

// SnapshotSigner produces secp256k1 signatures over snapshot payloads.
type SnapshotSigner struct {
	key *ecdsa.PrivateKey
}

// NewSigner creates a signer. When keyHex is empty an ephemeral key is
// generated, which is fine for single-instance deployments where the public
// key is read from /status.
func NewSigner(keyHex string) (*SnapshotSigner, error) {
	if keyHex != "" {
		key, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid signing key: %w", err)
		}
		return &SnapshotSigner{key: key}, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	logrus.Info("Generated ephemeral snapshot signing key")
	return &SnapshotSigner{key: key}, nil
}

// PublicKeyHex returns the uncompressed public key as a hex string.
func (s *SnapshotSigner) PublicKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSAPub(&s.key.PublicKey))
}

// Sign serializes the payload to JSON, hashes it with Keccak-256 and signs
// the digest. The signature is returned hex-encoded.
func (s *SnapshotSigner) Sign(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload for signing: %w", err)
	}

	digest := crypto.Keccak256(data)
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify checks a hex signature against a payload and the signer's key.
func (s *SnapshotSigner) Verify(payload any, sigHex string) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode payload for verification: %w", err)
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != 65 {
		return false, fmt.Errorf("unexpected signature length %d", len(sig))
	}

	digest := crypto.Keccak256(data)
	// Strip the recovery id for VerifySignature
	return crypto.VerifySignature(crypto.FromECDSAPub(&s.key.PublicKey), digest, sig[:64]), nil
}
