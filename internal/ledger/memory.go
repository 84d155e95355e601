package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryClient is a process-local Client used in tests and in dev mode
// (LEDGER_MODE=memory) where no ledger credentials are available. It mimics
// the ledger's observable behavior: topics hold ordered messages with
// sequence numbers, every write yields a transaction id, and writes are
// final.
//
// Error fields inject failures for testing; set them before use, not
// concurrently with calls.
type InMemoryClient struct {
	mu       sync.Mutex
	topics   map[string][]Message
	topicSeq int
	tokenSeq int
	txSeq    int
	balance  Balance

	CreateErr  error
	SubmitErr  error
	MintErr    error
	BalanceErr error
	ReadErr    error
}

// NewInMemoryClient creates a fake ledger with a default operator balance.
func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{
		topics: make(map[string][]Message),
		balance: Balance{
			AccountID: "0.0.999999",
			Hbars:     "100 ℏ",
			Tinybars:  10_000_000_000,
		},
	}
}

// SetBalance overrides the operator balance returned by AccountBalance.
func (c *InMemoryClient) SetBalance(b Balance) {
	c.mu.Lock()
	c.balance = b
	c.mu.Unlock()
}

func (c *InMemoryClient) nextTransactionID() string {
	c.txSeq++
	return fmt.Sprintf("0.0.999999@%d.%09d", time.Now().Unix(), c.txSeq)
}

// CreateTopic creates a new topic. Every call creates a distinct topic.
func (c *InMemoryClient) CreateTopic(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CreateErr != nil {
		return "", c.CreateErr
	}
	c.topicSeq++
	topicID := fmt.Sprintf("0.0.%d", 400000+c.topicSeq)
	c.topics[topicID] = nil
	return topicID, nil
}

// SubmitMessage appends a payload to a topic.
func (c *InMemoryClient) SubmitMessage(_ context.Context, topicID string, payload []byte) (TransactionReceipt, error) {
	if len(payload) == 0 {
		return TransactionReceipt{}, ErrEmptyPayload
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SubmitErr != nil {
		return TransactionReceipt{}, c.SubmitErr
	}
	msgs, ok := c.topics[topicID]
	if !ok {
		return TransactionReceipt{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}

	contents := make([]byte, len(payload))
	copy(contents, payload)
	msg := Message{
		SequenceNumber:     uint64(len(msgs) + 1),
		ConsensusTimestamp: time.Now().UTC(),
		Contents:           contents,
	}
	c.topics[topicID] = append(msgs, msg)

	return TransactionReceipt{
		TransactionID:      c.nextTransactionID(),
		ConsensusTimestamp: msg.ConsensusTimestamp,
		TopicID:            topicID,
		SequenceNumber:     msg.SequenceNumber,
	}, nil
}

// MintToken mints a certificate token.
func (c *InMemoryClient) MintToken(_ context.Context, meta CertificateMetadata) (TransactionReceipt, error) {
	if meta.ProductID == "" {
		return TransactionReceipt{}, ErrEmptyProductID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.MintErr != nil {
		return TransactionReceipt{}, c.MintErr
	}
	c.tokenSeq++
	return TransactionReceipt{
		TransactionID:      c.nextTransactionID(),
		ConsensusTimestamp: time.Now().UTC(),
		TokenID:            fmt.Sprintf("0.0.%d", 700000+c.tokenSeq),
	}, nil
}

// AccountBalance returns the configured operator balance.
func (c *InMemoryClient) AccountBalance(_ context.Context) (Balance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BalanceErr != nil {
		return Balance{}, c.BalanceErr
	}
	return c.balance, nil
}

// ReadMessages returns up to limit messages from a topic in consensus order.
func (c *InMemoryClient) ReadMessages(_ context.Context, topicID string, limit int) ([]Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return nil, c.ReadErr
	}
	msgs, ok := c.topics[topicID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}
	n := len(msgs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Message, n)
	copy(out, msgs[:n])
	return out, nil
}

// TopicCount returns the number of topics created, for cache race assertions
// in tests.
func (c *InMemoryClient) TopicCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.topics)
}
