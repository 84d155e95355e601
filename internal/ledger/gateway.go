package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zubeidhendricks/africhain/internal/audit"
)

// DefaultChannelMemo is the memo used when the gateway has to create the log
// channel itself.
const DefaultChannelMemo = "AfriChain audit trail"

// explorerHost is the transaction explorer the verification URLs point at.
// The URL format is load-bearing: dashboards and printed QR codes link to it.
const explorerHost = "hashscan.io"

// VerificationURL returns the explorer URL for a transaction. The format
// https://hashscan.io/<network>/transaction/<transaction_id> must be
// reproduced exactly.
func VerificationURL(network, transactionID string) string {
	return fmt.Sprintf("https://%s/%s/transaction/%s", explorerHost, network, transactionID)
}

// Archiver stores certificate metadata documents off-ledger and returns a URI
// recorded in the minted token. Implemented by the archive package.
type Archiver interface {
	StoreCertificateMetadata(ctx context.Context, meta CertificateMetadata) (string, error)
}

// MintResult is the outcome of a certificate mint. Minting and audit logging
// are two ledger calls: a mint that is acknowledged stands even when the
// follow-up audit append fails, so AuditLogged records whether the trail
// covers this mint.
type MintResult struct {
	Receipt            TransactionReceipt `json:"receipt"`
	MetadataURI        string             `json:"metadata_uri,omitempty"`
	AuditLogged        bool               `json:"audit_logged"`
	AuditTransactionID string             `json:"audit_transaction_id,omitempty"`
}

// Gateway composes the ledger client with the channel cache, the audit
// builder, and the local audit mirror. It is the single entry point for
// ledger side effects.
type Gateway struct {
	client   Client
	channels ChannelStore
	archive  Archiver // optional
	builder  *audit.Builder
	mirror   audit.Repository
	network  string
	metrics  *Metrics

	// createMu serializes lazy channel creation so concurrent first
	// requests resolve to one channel instead of racing to create several.
	createMu sync.Mutex
}

// GatewayConfig wires a Gateway. Client, Channels, Builder and Mirror are
// required; Archive and Metrics are optional.
type GatewayConfig struct {
	Client   Client
	Channels ChannelStore
	Archive  Archiver
	Builder  *audit.Builder
	Mirror   audit.Repository
	Network  string
	Metrics  *Metrics
}

// NewGateway creates a Gateway from its dependencies.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.Client == nil {
		return nil, ErrClientNotReady
	}
	if !ValidNetwork(cfg.Network) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, cfg.Network)
	}
	return &Gateway{
		client:   cfg.Client,
		channels: cfg.Channels,
		archive:  cfg.Archive,
		builder:  cfg.Builder,
		mirror:   cfg.Mirror,
		network:  cfg.Network,
		metrics:  cfg.Metrics,
	}, nil
}

// Network returns the ledger network the gateway operates on.
func (g *Gateway) Network() string {
	return g.network
}

// CreateLogChannel returns the cached log channel id, creating a new channel
// on the ledger when none is cached. Creation is not deduplicated by memo:
// if the cache is empty a new channel is always created.
func (g *Gateway) CreateLogChannel(ctx context.Context, memo string) (string, error) {
	if cached, err := g.channels.Get(ctx); err == nil && cached != "" {
		return cached, nil
	} else if err != nil {
		slog.WarnContext(ctx, "channel cache read failed, creating fresh channel", "error", err)
	}

	g.createMu.Lock()
	defer g.createMu.Unlock()

	// Re-check under the lock: another request may have created the channel
	// while this one waited.
	if cached, err := g.channels.Get(ctx); err == nil && cached != "" {
		return cached, nil
	}

	topicID, err := g.observe(ctx, "create_topic", func() (string, error) {
		return g.client.CreateTopic(ctx, memo)
	})
	if err != nil {
		return "", fmt.Errorf("create log channel: %w", err)
	}

	if err := g.channels.Set(ctx, topicID); err != nil {
		// The channel exists on the ledger either way; a cache write failure
		// only risks a duplicate channel on the next cold call.
		slog.WarnContext(ctx, "failed to cache log channel id", "topic_id", topicID, "error", err)
	}
	slog.InfoContext(ctx, "created ledger log channel", "topic_id", topicID, "memo", memo)
	return topicID, nil
}

// AppendLogMessage appends an audit record to the log channel, lazily
// creating the channel first if none is cached. The record is serialized as
// JSON so explorer tooling can read the trail directly.
func (g *Gateway) AppendLogMessage(ctx context.Context, rec audit.Record) (TransactionReceipt, error) {
	if err := rec.Validate(); err != nil {
		return TransactionReceipt{}, err
	}

	topicID, err := g.CreateLogChannel(ctx, DefaultChannelMemo)
	if err != nil {
		return TransactionReceipt{}, err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return TransactionReceipt{}, fmt.Errorf("encode audit record: %w", err)
	}

	var receipt TransactionReceipt
	_, err = g.observe(ctx, "submit_message", func() (string, error) {
		var submitErr error
		receipt, submitErr = g.client.SubmitMessage(ctx, topicID, payload)
		return receipt.TransactionID, submitErr
	})
	if err != nil {
		return TransactionReceipt{}, fmt.Errorf("append log message: %w", err)
	}

	if g.mirror != nil {
		if mirrorErr := g.mirror.Append(rec); mirrorErr != nil {
			slog.WarnContext(ctx, "audit mirror append failed", "record_id", rec.ID, "error", mirrorErr)
		}
	}
	return receipt, nil
}

// MintCertificate mints a certificate token and then appends an audit record
// for the mint. Policy: mint first, log best-effort. An acknowledged mint is
// final; an audit append failure afterwards is surfaced via AuditLogged=false
// and logged, never rolled back.
func (g *Gateway) MintCertificate(ctx context.Context, meta CertificateMetadata) (MintResult, error) {
	if meta.ProductID == "" {
		return MintResult{}, ErrEmptyProductID
	}

	if g.archive != nil {
		uri, err := g.archive.StoreCertificateMetadata(ctx, meta)
		if err != nil {
			// The archive is an off-ledger convenience; a failed upload does
			// not block the mint.
			slog.WarnContext(ctx, "certificate metadata archive failed", "product_id", meta.ProductID, "error", err)
		} else {
			meta.MetadataURI = uri
		}
	}

	var receipt TransactionReceipt
	_, err := g.observe(ctx, "mint_token", func() (string, error) {
		var mintErr error
		receipt, mintErr = g.client.MintToken(ctx, meta)
		return receipt.TransactionID, mintErr
	})
	if err != nil {
		return MintResult{}, fmt.Errorf("mint certificate: %w", err)
	}

	result := MintResult{Receipt: receipt, MetadataURI: meta.MetadataURI}

	rec := g.builder.Build(
		"nft_mint",
		meta,
		receipt,
		meta.AuthenticityScore,
		fmt.Sprintf("minted certificate token %s for product %s", receipt.TokenID, meta.ProductID),
	)
	auditReceipt, err := g.AppendLogMessage(ctx, rec)
	if err != nil {
		slog.WarnContext(ctx, "mint succeeded but audit append failed",
			"token_id", receipt.TokenID, "transaction_id", receipt.TransactionID, "error", err)
		return result, nil
	}
	result.AuditLogged = true
	result.AuditTransactionID = auditReceipt.TransactionID
	return result, nil
}

// Balance queries the operator account balance.
func (g *Gateway) Balance(ctx context.Context) (Balance, error) {
	var bal Balance
	_, err := g.observe(ctx, "account_balance", func() (string, error) {
		var balErr error
		bal, balErr = g.client.AccountBalance(ctx)
		return "", balErr
	})
	return bal, err
}

// ReadLogMessages reads back the audit trail from the cached log channel.
func (g *Gateway) ReadLogMessages(ctx context.Context, limit int) ([]Message, error) {
	topicID, err := g.channels.Get(ctx)
	if err != nil {
		return nil, err
	}
	if topicID == "" {
		return nil, ErrNoChannel
	}
	return g.client.ReadMessages(ctx, topicID, limit)
}

// observe runs a ledger operation under metrics instrumentation.
func (g *Gateway) observe(ctx context.Context, op string, fn func() (string, error)) (string, error) {
	if g.metrics == nil {
		return fn()
	}
	return g.metrics.ObserveOperation(op, fn)
}
