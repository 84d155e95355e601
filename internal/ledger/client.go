// Package ledger provides the gateway to the distributed ledger: consensus
// log channels for the audit trail, certificate token minting, and account
// balance queries. The ledger itself is an external collaborator reached
// through the Client interface; everything in this package treats its writes
// as irreversible once acknowledged.
package ledger

import (
	"context"
	"errors"
	"time"
)

// Ledger boundary errors.
var (
	ErrNoChannel      = errors.New("no log channel configured or cached")
	ErrEmptyPayload   = errors.New("message payload cannot be empty")
	ErrTopicNotFound  = errors.New("topic not found")
	ErrClientNotReady = errors.New("ledger client is not configured")
	ErrEmptyProductID = errors.New("certificate metadata requires a product id")
	ErrInvalidNetwork = errors.New("unknown ledger network")
)

// Known ledger networks.
const (
	NetworkMainnet    = "mainnet"
	NetworkTestnet    = "testnet"
	NetworkPreviewnet = "previewnet"
)

// ValidNetwork reports whether name is a known ledger network.
func ValidNetwork(name string) bool {
	switch name {
	case NetworkMainnet, NetworkTestnet, NetworkPreviewnet:
		return true
	}
	return false
}

// TransactionReceipt is returned by ledger write operations. Receipts are
// never mutated after creation.
type TransactionReceipt struct {
	TransactionID      string    `json:"transaction_id"`
	ConsensusTimestamp time.Time `json:"consensus_timestamp,omitempty"`
	TopicID            string    `json:"topic_id,omitempty"`
	TokenID            string    `json:"token_id,omitempty"`
	SequenceNumber     uint64    `json:"sequence_number,omitempty"`
}

// Balance is the operator account balance snapshot used by the status
// reporter as a liveness probe.
type Balance struct {
	AccountID string `json:"account_id"`
	Hbars     string `json:"hbars"`
	Tinybars  int64  `json:"tinybars"`
}

// Message is one entry read back from a consensus log channel.
type Message struct {
	SequenceNumber     uint64    `json:"sequence_number"`
	ConsensusTimestamp time.Time `json:"consensus_timestamp"`
	Contents           []byte    `json:"contents"`
}

// CertificateMetadata describes the product a certificate token attests to.
type CertificateMetadata struct {
	ProductID         string  `json:"product_id"`
	ProductName       string  `json:"product_name"`
	AuthenticityScore float64 `json:"authenticity_score"`
	// MetadataURI points at the archived metadata document; filled in by the
	// gateway when an archive is configured.
	MetadataURI string `json:"metadata_uri,omitempty"`
}

// Client is the boundary around the ledger SDK. Implementations must be safe
// for concurrent use. All calls are single-shot: no retries, no compensation.
type Client interface {
	// CreateTopic creates a new consensus log channel and returns its id.
	// There is no deduplication by memo; every call creates a new channel.
	CreateTopic(ctx context.Context, memo string) (string, error)

	// SubmitMessage appends a payload to a log channel.
	SubmitMessage(ctx context.Context, topicID string, payload []byte) (TransactionReceipt, error)

	// MintToken mints a certificate token carrying the given metadata.
	MintToken(ctx context.Context, meta CertificateMetadata) (TransactionReceipt, error)

	// AccountBalance returns the operator account balance.
	AccountBalance(ctx context.Context) (Balance, error)

	// ReadMessages reads back up to limit messages from a log channel in
	// consensus order (limit 0 means all). Used for audit verification.
	ReadMessages(ctx context.Context, topicID string, limit int) ([]Message, error)
}
