package sol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const MEMO_PROGRAM = "Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo"

var memoProgramID = solana.MustPublicKeyFromBase58(MEMO_PROGRAM)

// BuildMemoTransaction builds a one-instruction memo transaction paid and signed by payer.
// Useful for smoke testing a bundle route without touching any program state.
func BuildMemoTransaction(payer solana.PrivateKey, recentBlockhash solana.Hash, message string) (*solana.Transaction, error) {
	ix := solana.NewInstruction(
		memoProgramID,
		solana.AccountMetaSlice{solana.Meta(payer.PublicKey()).SIGNER().WRITE()},
		[]byte(message),
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recentBlockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("build memo transaction failed: %w", err)
	}
	if _, err := tx.Sign(Signer(payer)); err != nil {
		return nil, fmt.Errorf("sign memo transaction failed: %w", err)
	}
	return tx, nil
}

// DecodeTransaction parses a transaction in wire format.
func DecodeTransaction(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("decode transaction failed: %w", err)
	}
	return tx, nil
}

func DecodeTransactionBase64(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 transaction: %w", err)
	}
	return DecodeTransaction(raw)
}

// LoadTransactionGroups reads a JSON file holding an array of groups, each an array of
// base64 wire transactions, e.g. [["<lp tx>"], ["<swap tx>"]].
// Every transaction must already carry valid signatures.
func LoadTransactionGroups(path string) ([][]*solana.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transaction file failed: %w", err)
	}
	var encoded [][]string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("parse transaction file failed: %w", err)
	}
	return DecodeTransactionGroups(encoded)
}

func DecodeTransactionGroups(encoded [][]string) ([][]*solana.Transaction, error) {
	groups := make([][]*solana.Transaction, 0, len(encoded))
	for gi, group := range encoded {
		txs := make([]*solana.Transaction, 0, len(group))
		for ti, s := range group {
			tx, err := DecodeTransactionBase64(s)
			if err != nil {
				return nil, fmt.Errorf("group %d transaction %d: %w", gi, ti, err)
			}
			if err := tx.VerifySignatures(); err != nil {
				return nil, fmt.Errorf("group %d transaction %d: %w", gi, ti, err)
			}
			txs = append(txs, tx)
		}
		groups = append(groups, txs)
	}
	return groups, nil
}
