package types

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Bundle is an ordered group of signed transactions the block engine executes atomically,
// all or nothing. The tip transaction is always the last element and appears once.
// A Bundle is built once per submission and never modified afterwards.
type Bundle struct {
	txs   []*solana.Transaction
	limit int
}

// NewBundle copies txs, appends tip and checks the result against limit.
func NewBundle(txs []*solana.Transaction, tip *solana.Transaction, limit int) (*Bundle, error) {
	if tip == nil {
		return nil, errors.New("bundle requires a tip transaction")
	}
	if len(txs)+1 > limit {
		return nil, fmt.Errorf("%w: %d transactions plus tip exceeds limit %d", ErrBundleTooLarge, len(txs), limit)
	}

	all := make([]*solana.Transaction, 0, len(txs)+1)
	for i, tx := range txs {
		if tx == nil {
			return nil, fmt.Errorf("bundle transaction %d is nil", i)
		}
		if tx == tip {
			return nil, fmt.Errorf("bundle transaction %d is the tip transaction", i)
		}
		all = append(all, tx)
	}
	all = append(all, tip)

	return &Bundle{txs: all, limit: limit}, nil
}

// Transactions returns the bundle in execution order, tip last.
func (b *Bundle) Transactions() []*solana.Transaction {
	out := make([]*solana.Transaction, len(b.txs))
	copy(out, b.txs)
	return out
}

func (b *Bundle) Len() int {
	return len(b.txs)
}

func (b *Bundle) Limit() int {
	return b.limit
}

func (b *Bundle) Tip() *solana.Transaction {
	return b.txs[len(b.txs)-1]
}

// Signatures returns the first signature of every transaction, which is its identifier.
func (b *Bundle) Signatures() []string {
	sigs := make([]string, 0, len(b.txs))
	for _, tx := range b.txs {
		if len(tx.Signatures) == 0 {
			sigs = append(sigs, "")
			continue
		}
		sigs = append(sigs, tx.Signatures[0].String())
	}
	return sigs
}

// EncodeBase64 serializes each transaction to wire format, base64 encoded.
func (b *Bundle) EncodeBase64() ([]string, error) {
	return b.encode(base64.StdEncoding.EncodeToString)
}

// EncodeBase58 is the block engine's default (and deprecated) bundle encoding.
func (b *Bundle) EncodeBase58() ([]string, error) {
	return b.encode(base58.Encode)
}

func (b *Bundle) encode(enc func([]byte) string) ([]string, error) {
	out := make([]string, 0, len(b.txs))
	for i, tx := range b.txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("marshal bundle transaction %d failed: %w", i, err)
		}
		out = append(out, enc(raw))
	}
	return out, nil
}
