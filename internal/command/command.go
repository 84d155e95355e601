// Package command dispatches classified natural-language commands to the
// ledger gateway, extracting typed parameters from the raw text and turning
// every outcome, including gateway failures, into a CommandResult.
package command

import (
	"github.com/zubeidhendricks/africhain/internal/analysis"
	"github.com/zubeidhendricks/africhain/internal/intent"
)

// Context is the optional structured context accompanying a raw command. It
// is the second extraction fallback, after the command text and before the
// literal defaults.
type Context struct {
	ProductID string            `json:"product_id,omitempty"`
	Score     *float64          `json:"score,omitempty"`
	Message   string            `json:"message,omitempty"`
	Product   *analysis.Product `json:"product,omitempty"`
}

// Command is one raw natural-language input. Immutable once received and
// never persisted beyond the request.
type Command struct {
	Text    string   `json:"command"`
	Context *Context `json:"context,omitempty"`
}

// MintParams are the typed parameters for an nft_mint dispatch.
type MintParams struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// AuditParams are the typed parameters for an audit_log dispatch.
type AuditParams struct {
	Message string `json:"message"`
}

// AnalyzeParams are the typed parameters for a product_analysis dispatch.
type AnalyzeParams struct {
	Name           string  `json:"product_name"`
	Price          float64 `json:"price"`
	SellerVerified bool    `json:"seller_verified"`
}

// Result is the terminal output of dispatching one command, one-to-one with
// the Command that produced it.
type Result struct {
	Success               bool   `json:"success"`
	Action                string `json:"action"`
	Payload               any    `json:"result,omitempty"`
	Explanation           string `json:"explanation"`
	BlockchainTransaction string `json:"blockchain_transaction,omitempty"`
	VerificationURL       string `json:"verification_url,omitempty"`
}

// MintPayload is the Result payload for a successful mint.
type MintPayload struct {
	Params      MintParams `json:"params"`
	TokenID     string     `json:"token_id"`
	MetadataURI string     `json:"metadata_uri,omitempty"`
	AuditLogged bool       `json:"audit_logged"`
}

// AuditPayload is the Result payload for a successful audit log append.
type AuditPayload struct {
	Message        string `json:"message"`
	RecordID       string `json:"record_id"`
	SequenceNumber uint64 `json:"sequence_number"`
}

// BalancePayload is the Result payload for a balance query.
type BalancePayload struct {
	AccountID string `json:"account_id"`
	Hbars     string `json:"hbars"`
	Network   string `json:"network"`
}

// extractMintParams resolves the typed parameters for an nft_mint dispatch.
func extractMintParams(text string, ctx *Context) MintParams {
	return MintParams{
		ProductID: extractProductID(text, ctx),
		Score:     extractScore(text, ctx),
	}
}

// extractAuditParams resolves the typed parameters for an audit_log dispatch.
func extractAuditParams(text string, ctx *Context) AuditParams {
	return AuditParams{Message: extractAuditMessage(text, ctx)}
}

// extractAnalyzeParams resolves the typed parameters for a product_analysis
// dispatch.
func extractAnalyzeParams(text string, ctx *Context) AnalyzeParams {
	return AnalyzeParams{
		Name:           extractProductName(text, ctx),
		Price:          extractPrice(text, ctx),
		SellerVerified: extractSellerVerified(ctx),
	}
}

// helpText enumerates example commands for inputs that match no intent.
const helpText = `I didn't recognize that command. Try one of:
- "Check my account balance"
- "Mint an NFT for product 42 with 80% score"
- "Log an audit message about \"inspection passed\""
- "Analyze this handbag for $250"
- "What is the service status?"`

// unknownResult is returned for a ClassificationMiss. It never touches the
// ledger gateway.
func unknownResult() Result {
	return Result{
		Success:     false,
		Action:      intent.UnknownCommand,
		Explanation: helpText,
	}
}
