package sol

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var testBlockhash = solana.Hash{9, 9, 9}

func encodeTx(t *testing.T, tx *solana.Transaction) string {
	t.Helper()
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestBuildMemoTransaction(t *testing.T) {
	payer := solana.NewWallet().PrivateKey

	tx, err := BuildMemoTransaction(payer, testBlockhash, "First TXN")
	require.NoError(t, err)
	require.NoError(t, tx.VerifySignatures())
	require.Equal(t, testBlockhash, tx.Message.RecentBlockhash)
	require.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])

	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]
	program, err := tx.Message.ResolveProgramIDIndex(ix.ProgramIDIndex)
	require.NoError(t, err)
	require.Equal(t, memoProgramID, program)
	require.Equal(t, []byte("First TXN"), []byte(ix.Data))
}

func TestDecodeTransactionGroups(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	lp, err := BuildMemoTransaction(payer, testBlockhash, "lp")
	require.NoError(t, err)
	swap, err := BuildMemoTransaction(payer, testBlockhash, "swap")
	require.NoError(t, err)

	groups, err := DecodeTransactionGroups([][]string{{encodeTx(t, lp)}, {encodeTx(t, swap)}})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, lp.Signatures[0], groups[0][0].Signatures[0])
	require.Equal(t, swap.Signatures[0], groups[1][0].Signatures[0])
}

func TestDecodeTransactionGroupsRejectsBadInput(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	tx, err := BuildMemoTransaction(payer, testBlockhash, "memo")
	require.NoError(t, err)

	_, err = DecodeTransactionGroups([][]string{{"%%%"}})
	require.Error(t, err)

	_, err = DecodeTransactionGroups([][]string{{base64.StdEncoding.EncodeToString([]byte{1, 2, 3})}})
	require.Error(t, err)

	// Signature that does not match the message
	tx.Signatures[0] = solana.Signature{}
	_, err = DecodeTransactionGroups([][]string{{encodeTx(t, tx)}})
	require.Error(t, err)
}

func TestLoadTransactionGroups(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	tx, err := BuildMemoTransaction(payer, testBlockhash, "memo")
	require.NoError(t, err)

	data, err := json.Marshal([][]string{{encodeTx(t, tx)}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "groups.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	groups, err := LoadTransactionGroups(path)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)

	_, err = LoadTransactionGroups(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
