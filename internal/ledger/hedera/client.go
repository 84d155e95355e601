// Package hedera implements the ledger Client against the Hedera network
// using the official SDK: consensus topics for the audit trail, a
// non-fungible token collection for certificates, and the mirror node REST
// API for reading topic messages back.
package hedera

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// Configuration errors.
var (
	ErrMissingAccountID  = errors.New("hedera operator account id is required")
	ErrMissingPrivateKey = errors.New("hedera operator private key is required")
)

// Mirror node REST endpoints per network.
var mirrorBaseURLs = map[string]string{
	ledger.NetworkMainnet:    "https://mainnet.mirrornode.hedera.com",
	ledger.NetworkTestnet:    "https://testnet.mirrornode.hedera.com",
	ledger.NetworkPreviewnet: "https://previewnet.mirrornode.hedera.com",
}

// Defaults for the certificate token collection.
const (
	DefaultTokenName   = "AfriChain Authenticity Certificate"
	DefaultTokenSymbol = "AFRI-CERT"
)

// Config holds the operator credentials and network selection.
type Config struct {
	Network    string
	AccountID  string
	PrivateKey string

	// TokenID is an optional pre-provisioned certificate collection. When
	// empty the collection is created lazily on the first mint.
	TokenID string

	// TokenName and TokenSymbol apply when the collection is created lazily.
	TokenName   string
	TokenSymbol string

	// MirrorBaseURL overrides the per-network mirror node endpoint.
	MirrorBaseURL string

	// HTTPClient is used for mirror node reads. Defaults to a 10s-timeout
	// client.
	HTTPClient *http.Client
}

// Client is the Hedera-backed ledger.Client. Safe for concurrent use.
type Client struct {
	sdkClient  *sdk.Client
	operatorID sdk.AccountID
	supplyKey  sdk.PrivateKey
	network    string

	tokenName   string
	tokenSymbol string
	tokenMu     sync.Mutex
	tokenID     *sdk.TokenID

	mirrorBase string
	httpClient *http.Client
}

// NewClient validates credentials and connects the SDK client for the
// configured network.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountID == "" {
		return nil, ErrMissingAccountID
	}
	if cfg.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	var sdkClient *sdk.Client
	switch cfg.Network {
	case ledger.NetworkMainnet:
		sdkClient = sdk.ClientForMainnet()
	case ledger.NetworkTestnet:
		sdkClient = sdk.ClientForTestnet()
	case ledger.NetworkPreviewnet:
		sdkClient = sdk.ClientForPreviewnet()
	default:
		return nil, fmt.Errorf("%w: %q", ledger.ErrInvalidNetwork, cfg.Network)
	}

	operatorID, err := sdk.AccountIDFromString(cfg.AccountID)
	if err != nil {
		return nil, fmt.Errorf("parse operator account id: %w", err)
	}
	privateKey, err := sdk.PrivateKeyFromString(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse operator private key: %w", err)
	}
	sdkClient.SetOperator(operatorID, privateKey)

	c := &Client{
		sdkClient:   sdkClient,
		operatorID:  operatorID,
		supplyKey:   privateKey,
		network:     cfg.Network,
		tokenName:   cfg.TokenName,
		tokenSymbol: cfg.TokenSymbol,
		mirrorBase:  cfg.MirrorBaseURL,
		httpClient:  cfg.HTTPClient,
	}
	if c.tokenName == "" {
		c.tokenName = DefaultTokenName
	}
	if c.tokenSymbol == "" {
		c.tokenSymbol = DefaultTokenSymbol
	}
	if c.mirrorBase == "" {
		c.mirrorBase = mirrorBaseURLs[cfg.Network]
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.TokenID != "" {
		tokenID, err := sdk.TokenIDFromString(cfg.TokenID)
		if err != nil {
			return nil, fmt.Errorf("parse certificate token id: %w", err)
		}
		c.tokenID = &tokenID
	}
	return c, nil
}

// Close releases the SDK client's network connections.
func (c *Client) Close() error {
	return c.sdkClient.Close()
}

// CreateTopic creates a new consensus topic with the given memo. The SDK
// manages its own gRPC deadlines; ctx is honored only between calls.
func (c *Client) CreateTopic(ctx context.Context, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := sdk.NewTopicCreateTransaction().
		SetTopicMemo(memo).
		SetAdminKey(c.supplyKey.PublicKey()).
		Execute(c.sdkClient)
	if err != nil {
		return "", fmt.Errorf("topic create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.sdkClient)
	if err != nil {
		return "", fmt.Errorf("topic create receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return "", errors.New("topic create receipt missing topic id")
	}
	return receipt.TopicID.String(), nil
}

// SubmitMessage appends a payload to a consensus topic.
func (c *Client) SubmitMessage(ctx context.Context, topicID string, payload []byte) (ledger.TransactionReceipt, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionReceipt{}, err
	}
	if len(payload) == 0 {
		return ledger.TransactionReceipt{}, ledger.ErrEmptyPayload
	}
	id, err := sdk.TopicIDFromString(topicID)
	if err != nil {
		return ledger.TransactionReceipt{}, fmt.Errorf("parse topic id: %w", err)
	}
	resp, err := sdk.NewTopicMessageSubmitTransaction().
		SetTopicID(id).
		SetMessage(payload).
		Execute(c.sdkClient)
	if err != nil {
		return ledger.TransactionReceipt{}, fmt.Errorf("message submit: %w", err)
	}
	receipt, err := resp.GetReceipt(c.sdkClient)
	if err != nil {
		return ledger.TransactionReceipt{}, fmt.Errorf("message submit receipt: %w", err)
	}
	return ledger.TransactionReceipt{
		TransactionID:  resp.TransactionID.String(),
		TopicID:        topicID,
		SequenceNumber: receipt.TopicSequenceNumber,
	}, nil
}

// MintToken mints one certificate NFT, creating the collection lazily on the
// first mint. NFT metadata is capped at 100 bytes on Hedera, so the minted
// metadata is the archive URI when present, else a compact product reference.
func (c *Client) MintToken(ctx context.Context, meta ledger.CertificateMetadata) (ledger.TransactionReceipt, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionReceipt{}, err
	}
	if meta.ProductID == "" {
		return ledger.TransactionReceipt{}, ledger.ErrEmptyProductID
	}

	tokenID, err := c.ensureCollection()
	if err != nil {
		return ledger.TransactionReceipt{}, err
	}

	resp, err := sdk.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(nftMetadata(meta)).
		Execute(c.sdkClient)
	if err != nil {
		return ledger.TransactionReceipt{}, fmt.Errorf("token mint: %w", err)
	}
	if _, err := resp.GetReceipt(c.sdkClient); err != nil {
		return ledger.TransactionReceipt{}, fmt.Errorf("token mint receipt: %w", err)
	}
	return ledger.TransactionReceipt{
		TransactionID: resp.TransactionID.String(),
		TokenID:       tokenID.String(),
	}, nil
}

// ensureCollection returns the certificate collection, creating it on first
// use.
func (c *Client) ensureCollection() (sdk.TokenID, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.tokenID != nil {
		return *c.tokenID, nil
	}

	resp, err := sdk.NewTokenCreateTransaction().
		SetTokenName(c.tokenName).
		SetTokenSymbol(c.tokenSymbol).
		SetTokenType(sdk.TokenTypeNonFungibleUnique).
		SetTreasuryAccountID(c.operatorID).
		SetSupplyKey(c.supplyKey.PublicKey()).
		SetInitialSupply(0).
		Execute(c.sdkClient)
	if err != nil {
		return sdk.TokenID{}, fmt.Errorf("token create: %w", err)
	}
	receipt, err := resp.GetReceipt(c.sdkClient)
	if err != nil {
		return sdk.TokenID{}, fmt.Errorf("token create receipt: %w", err)
	}
	if receipt.TokenID == nil {
		return sdk.TokenID{}, errors.New("token create receipt missing token id")
	}
	c.tokenID = receipt.TokenID
	return *c.tokenID, nil
}

// nftMetadata builds the on-token metadata bytes within the 100-byte cap.
func nftMetadata(meta ledger.CertificateMetadata) []byte {
	if meta.MetadataURI != "" && len(meta.MetadataURI) <= 100 {
		return []byte(meta.MetadataURI)
	}
	ref := fmt.Sprintf("africhain:%s:%.2f", meta.ProductID, meta.AuthenticityScore)
	if len(ref) > 100 {
		ref = ref[:100]
	}
	return []byte(ref)
}

// AccountBalance queries the operator account balance.
func (c *Client) AccountBalance(ctx context.Context) (ledger.Balance, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Balance{}, err
	}
	balance, err := sdk.NewAccountBalanceQuery().
		SetAccountID(c.operatorID).
		Execute(c.sdkClient)
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("balance query: %w", err)
	}
	return ledger.Balance{
		AccountID: c.operatorID.String(),
		Hbars:     balance.Hbars.String(),
		Tinybars:  balance.Hbars.AsTinybar(),
	}, nil
}

// mirrorMessage is one entry of the mirror node topic messages response.
type mirrorMessage struct {
	SequenceNumber     uint64 `json:"sequence_number"`
	ConsensusTimestamp string `json:"consensus_timestamp"`
	Message            string `json:"message"` // base64
}

type mirrorMessagesResponse struct {
	Messages []mirrorMessage `json:"messages"`
}

// ReadMessages reads topic messages back through the mirror node REST API in
// consensus order.
func (c *Client) ReadMessages(ctx context.Context, topicID string, limit int) ([]ledger.Message, error) {
	url := fmt.Sprintf("%s/api/v1/topics/%s/messages?order=asc", c.mirrorBase, topicID)
	if limit > 0 {
		url = fmt.Sprintf("%s&limit=%d", url, limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror node query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ledger.ErrTopicNotFound, topicID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror node query: unexpected status %d", resp.StatusCode)
	}

	var body mirrorMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode mirror node response: %w", err)
	}

	messages := make([]ledger.Message, 0, len(body.Messages))
	for _, m := range body.Messages {
		contents, err := base64.StdEncoding.DecodeString(m.Message)
		if err != nil {
			return nil, fmt.Errorf("decode message %d contents: %w", m.SequenceNumber, err)
		}
		messages = append(messages, ledger.Message{
			SequenceNumber:     m.SequenceNumber,
			ConsensusTimestamp: parseConsensusTimestamp(m.ConsensusTimestamp),
			Contents:           contents,
		})
	}
	return messages, nil
}

// parseConsensusTimestamp converts the mirror node "seconds.nanos" form.
// Unparseable values return the zero time rather than failing the read.
func parseConsensusTimestamp(s string) time.Time {
	var secs int64
	var nanos int64
	if _, err := fmt.Sscanf(s, "%d.%d", &secs, &nanos); err != nil {
		return time.Time{}
	}
	return time.Unix(secs, nanos).UTC()
}
