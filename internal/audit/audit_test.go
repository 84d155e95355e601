package audit

import (
	"testing"
	"time"
)

func TestFingerprintDeterministic(t *testing.T) {
	input := map[string]any{"product": "Basket", "price": 45.0, "seller": true}
	a := Fingerprint(input)
	b := Fingerprint(map[string]any{"seller": true, "price": 45.0, "product": "Basket"})
	if a != b {
		t.Errorf("fingerprints differ for equivalent maps: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(a))
	}
}

func TestFingerprintNil(t *testing.T) {
	if got := Fingerprint(nil); got != "0" {
		t.Errorf("Fingerprint(nil) = %q, want %q", got, "0")
	}
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	a := Fingerprint("input one")
	b := Fingerprint("input two")
	if a == b {
		t.Errorf("distinct inputs produced identical fingerprint %q", a)
	}
}

func TestBuilderBuild(t *testing.T) {
	b := NewBuilder("0.0.12345", "testnet")
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	b.newID = func() string { return "rec-1" }

	rec := b.Build("nft_mint", "mint input", "mint result", 0.95, "minted certificate")

	if rec.ID != "rec-1" {
		t.Errorf("ID = %q", rec.ID)
	}
	if !rec.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, fixed)
	}
	if rec.ActorAccount != "0.0.12345" || rec.Network != "testnet" {
		t.Errorf("identity fields wrong: %+v", rec)
	}
	if rec.Action != "nft_mint" || rec.Confidence != 0.95 {
		t.Errorf("decision fields wrong: %+v", rec)
	}
	if rec.InputHash == "0" || rec.ResultHash == "0" {
		t.Error("expected non-empty fingerprints for non-nil input/result")
	}
	if rec.InputHash == rec.ResultHash {
		t.Error("input and result fingerprints should differ for different payloads")
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr error
	}{
		{"valid", Record{Action: "audit_log", ActorAccount: "0.0.1"}, nil},
		{"missing action", Record{ActorAccount: "0.0.1"}, ErrMissingAction},
		{"missing actor", Record{Action: "audit_log"}, ErrMissingActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rec.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	b := NewBuilder("0.0.12345", "testnet")

	for i := 0; i < 3; i++ {
		if err := repo.Append(b.Build("nft_mint", i, nil, 0.9, "mint")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := repo.Append(b.Build("audit_log", "msg", nil, 1.0, "log")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	mints, err := repo.QueryByAction("nft_mint", 2)
	if err != nil {
		t.Fatalf("QueryByAction: %v", err)
	}
	if len(mints) != 2 {
		t.Errorf("QueryByAction limit: got %d records, want 2", len(mints))
	}

	recent, err := repo.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 4 {
		t.Errorf("Recent(0) = %d records, want 4", len(recent))
	}
	if recent[0].Action != "audit_log" {
		t.Errorf("Recent order: first = %q, want newest (audit_log)", recent[0].Action)
	}

	if err := repo.Append(Record{}); err == nil {
		t.Error("Append should reject invalid records")
	}
	if repo.Len() != 4 {
		t.Errorf("Len() = %d, want 4", repo.Len())
	}
}
