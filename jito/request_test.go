package jito

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetLandedBundle(t *testing.T) {
	slot := uint64(320000000)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bundle/landed1" {
			_ = json.NewEncoder(w).Encode([]ExplorerBundle{})
			return
		}
		bundles := []ExplorerBundle{
			{
				BundleId:          "landed1",
				Slot:              slot,
				Validator:         "validator1",
				Tippers:           []string{"tipperA"},
				LandedTipLamports: 10_000_000,
				LandedCu:          5678,
				BlockIndex:        1,
				Timestamp:         "2025-08-23T02:00:00+00:00",
				TxSignatures:      []string{"txsig1", "txsig2"},
			},
		}
		_ = json.NewEncoder(w).Encode(bundles)
	}))
	defer ts.Close()

	JitoBundleURL = ts.URL
	defer func() { JitoBundleURL = "" }()

	b, err := GetLandedBundle(context.Background(), "landed1")
	if err != nil {
		t.Fatalf("GetLandedBundle failed: %v", err)
	}
	if b == nil {
		t.Fatalf("expected a bundle")
	}
	if b.Slot != slot {
		t.Errorf("unexpected slot: %d", b.Slot)
	}
	if b.LandedTipLamports != 10_000_000 {
		t.Errorf("unexpected tip: %d", b.LandedTipLamports)
	}
	if len(b.Transactions) != 2 || b.Transactions[0] != "txsig1" {
		t.Errorf("unexpected transactions: %v", b.Transactions)
	}
	if b.Timestamp.IsZero() {
		t.Errorf("timestamp not parsed")
	}

	b, err = GetLandedBundle(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("GetLandedBundle failed: %v", err)
	}
	if b != nil {
		t.Errorf("expected nil for an unknown bundle, got %+v", b)
	}
}

func TestExplorerURL(t *testing.T) {
	want := "https://explorer.jito.wtf/bundle/abc"
	if got := ExplorerURL("abc"); got != want {
		t.Errorf("ExplorerURL = %s, want %s", got, want)
	}
}
