package jito

import (
	"fmt"

	"bundler/types"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// BuildTipTransaction builds and signs a transfer of tipLamports from feePayer to tipAccount.
func BuildTipTransaction(tipLamports uint64, tipAccount solana.PublicKey, feePayer solana.PrivateKey, recentBlockhash solana.Hash) (*solana.Transaction, error) {
	payer := feePayer.PublicKey()
	ix := system.NewTransferInstruction(tipLamports, payer, tipAccount).Build()

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, recentBlockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("build tip transaction failed: %w", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &feePayer
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign tip transaction failed: %w", err)
	}
	return tx, nil
}

// BuildBundle flattens groups in order and appends a freshly signed tip transaction.
// Execution order inside a bundle matters: group order and the order within each
// group are kept exactly. The size check runs before anything is signed.
func BuildBundle(
	groups [][]*solana.Transaction,
	tipLamports uint64,
	tipAccount solana.PublicKey,
	feePayer solana.PrivateKey,
	recentBlockhash solana.Hash,
	limit int,
) (*types.Bundle, error) {
	count := 0
	for _, g := range groups {
		count += len(g)
	}
	if count+1 > limit {
		return nil, fmt.Errorf("%w: %d transactions plus tip exceeds limit %d", types.ErrBundleTooLarge, count, limit)
	}

	flat := make([]*solana.Transaction, 0, count)
	for _, g := range groups {
		flat = append(flat, g...)
	}

	tip, err := BuildTipTransaction(tipLamports, tipAccount, feePayer, recentBlockhash)
	if err != nil {
		return nil, err
	}
	return types.NewBundle(flat, tip, limit)
}
