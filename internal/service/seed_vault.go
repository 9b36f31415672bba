package service

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"solana-deposit-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/pbkdf2"
)

const (
	seedIterations = 2048
	seedLength     = 64
	seedSalt       = "mnemonic"

	// derivationTag versions the key derivation scheme. Changing it
	// changes every derived address, so it must never be bumped on a
	// deployment with live wallets.
	derivationTag = "wallet:v1"
)

// SeedVault holds the stretched master seed in memory and derives
// per-index keypairs from it. The mnemonic and the seed are never
// persisted, logged or exposed through any accessor.
type SeedVault struct {
	seed []byte
}

// NewSeedVault stretches the mnemonic into the master seed. The
// mnemonic is whitespace-normalized first so formatting differences in
// the environment variable do not change the derived keys.
func NewSeedVault(mnemonic string) (*SeedVault, error) {
	words := strings.Fields(mnemonic)
	if len(words) == 0 {
		return nil, apperror.ErrSeedInvalid(errors.New("empty mnemonic"))
	}

	normalized := strings.ToLower(strings.Join(words, " "))
	seed := pbkdf2.Key([]byte(normalized), []byte(seedSalt), seedIterations, seedLength, sha512.New)

	return &SeedVault{seed: seed}, nil
}

// DeriveKey returns the keypair for a derivation index. The same vault
// and index always produce the same keypair.
func (v *SeedVault) DeriveKey(index uint32) solana.PrivateKey {
	h := sha256.New()
	h.Write(v.seed)
	fmt.Fprintf(h, "%s:%d", derivationTag, index)

	priv := ed25519.NewKeyFromSeed(h.Sum(nil))
	return solana.PrivateKey(priv)
}

// DeriveAddress returns the base58 public address for a derivation index.
func (v *SeedVault) DeriveAddress(index uint32) string {
	return v.DeriveKey(index).PublicKey().String()
}
