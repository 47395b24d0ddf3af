package sol

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// LoadFeePayer reads the fee paying keypair from PRIVATE_KEY (base58) or,
// when unset, from the solana-keygen JSON file at KEYPAIR_PATH.
func LoadFeePayer() (solana.PrivateKey, error) {
	if encoded := strings.TrimSpace(viper.GetString("PRIVATE_KEY")); encoded != "" {
		return ParsePrivateKey(encoded)
	}
	if path := viper.GetString("KEYPAIR_PATH"); path != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			return nil, fmt.Errorf("load keypair file %s failed: %w", path, err)
		}
		return checkPrivateKey(key)
	}
	return nil, fmt.Errorf("no fee payer configured, set PRIVATE_KEY or KEYPAIR_PATH")
}

func ParsePrivateKey(encoded string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode private key failed: %w", err)
	}
	return checkPrivateKey(key)
}

func checkPrivateKey(key solana.PrivateKey) (solana.PrivateKey, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("invalid private key length %d, expect 64", len(key))
	}
	return key, nil
}

// Signer returns a signing callback for solana.Transaction.Sign that only knows keys.
func Signer(keys ...solana.PrivateKey) func(solana.PublicKey) *solana.PrivateKey {
	return func(pub solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(pub) {
				return &keys[i]
			}
		}
		return nil
	}
}
