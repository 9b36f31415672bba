package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// UserID identifies an end user. Telegram chat IDs are int64 and map
// onto this type directly. Key derivation never sees the user ID; it
// hashes the gap-free derivation index assigned at wallet creation.
type UserID int64

// Wallet is a derived deposit wallet held in memory. PrivateKey is
// regenerated from the master seed on demand and is never persisted
// or serialized.
type Wallet struct {
	UserID          UserID            `json:"user_id"`
	DerivationIndex uint32            `json:"derivation_index"`
	Address         string            `json:"address"`
	PrivateKey      solana.PrivateKey `json:"-"`
	CreatedAt       time.Time         `json:"created_at"`
}

// WalletRecord is the persisted projection of a wallet: everything
// except the key material.
type WalletRecord struct {
	UserID          UserID    `json:"user_id"`
	DerivationIndex uint32    `json:"derivation_index"`
	Address         string    `json:"address"`
	CreatedAt       time.Time `json:"created_at"`
}

// Record strips the key material for persistence.
func (w Wallet) Record() WalletRecord {
	return WalletRecord{
		UserID:          w.UserID,
		DerivationIndex: w.DerivationIndex,
		Address:         w.Address,
		CreatedAt:       w.CreatedAt,
	}
}
