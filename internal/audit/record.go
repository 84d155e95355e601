// Package audit builds and stores the structured records that document every
// blockchain-affecting decision for the append-only ledger log channel.
package audit

import (
	"errors"
	"time"
)

// Validation errors for audit records.
var (
	ErrMissingAction = errors.New("audit action cannot be empty")
	ErrMissingActor  = errors.New("audit actor account cannot be empty")
)

// Record is one entry in the audit trail. Once appended to the ledger log
// channel a record is final: it is never edited or deleted. InputHash and
// ResultHash are short content fingerprints (see Fingerprint), not security
// hashes.
type Record struct {
	ID           string    `json:"id" cbor:"id"`
	Timestamp    time.Time `json:"timestamp" cbor:"timestamp"`
	ActorAccount string    `json:"actor_account" cbor:"actor_account"`
	Action       string    `json:"action" cbor:"action"`
	InputHash    string    `json:"input_hash" cbor:"input_hash"`
	ResultHash   string    `json:"result_hash" cbor:"result_hash"`
	Confidence   float64   `json:"confidence" cbor:"confidence"`
	Reasoning    string    `json:"reasoning" cbor:"reasoning"`
	Network      string    `json:"network" cbor:"network"`
}

// Validate checks the required fields of a record before it is appended.
func (r *Record) Validate() error {
	if r.Action == "" {
		return ErrMissingAction
	}
	if r.ActorAccount == "" {
		return ErrMissingActor
	}
	return nil
}

// Builder stamps records with the operating identity so callers only supply
// the per-decision fields.
type Builder struct {
	actorAccount string
	network      string
	now          func() time.Time
	newID        func() string
}

// NewBuilder creates a Builder bound to the operator account and ledger
// network the service runs against.
func NewBuilder(actorAccount, network string) *Builder {
	return &Builder{
		actorAccount: actorAccount,
		network:      network,
		now:          time.Now,
		newID:        newRecordID,
	}
}

// Build assembles a Record for one decision. input and result are
// fingerprinted with the package digest; either may be nil.
func (b *Builder) Build(action string, input, result any, confidence float64, reasoning string) Record {
	return Record{
		ID:           b.newID(),
		Timestamp:    b.now().UTC(),
		ActorAccount: b.actorAccount,
		Action:       action,
		InputHash:    Fingerprint(input),
		ResultHash:   Fingerprint(result),
		Confidence:   confidence,
		Reasoning:    reasoning,
		Network:      b.network,
	}
}
