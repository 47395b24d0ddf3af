package types

import "time"

// JitoBundle is a landed bundle as reported by the Jito bundles explorer API
type JitoBundle struct {
	Slot              uint64    `json:"slot"`
	BundleId          string    `json:"bundleId"`
	Timestamp         time.Time `json:"timestamp"`
	Tippers           []string  `json:"tippers"`
	Transactions      []string  `json:"transactions"`
	LandedTipLamports uint64    `json:"landedTipLamports"`
}

// BundleSubmission is one resolved submission, as stored in the history table
type BundleSubmission struct {
	BundleId    string    `json:"bundleId" ch:"bundleId"`
	Timestamp   time.Time `json:"timestamp" ch:"timestamp"`
	TipAccount  string    `json:"tipAccount" ch:"tipAccount"`
	TipLamports uint64    `json:"tipLamports" ch:"tipLamports"`
	TxCount     uint32    `json:"txCount" ch:"txCount"`
	Signatures  []string  `json:"signatures" ch:"signatures"`
	Status      string    `json:"status" ch:"status"`
	Slot        uint64    `json:"slot" ch:"slot"`
	Rejections  uint32    `json:"rejections" ch:"rejections"`
	WaitMs      uint64    `json:"waitMs" ch:"waitMs"`
}

type BundleSubmissions []*BundleSubmission
