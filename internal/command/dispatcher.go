package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zubeidhendricks/africhain/internal/analysis"
	"github.com/zubeidhendricks/africhain/internal/audit"
	"github.com/zubeidhendricks/africhain/internal/intent"
	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// Gateway is the slice of the ledger gateway the dispatcher needs.
type Gateway interface {
	AppendLogMessage(ctx context.Context, rec audit.Record) (ledger.TransactionReceipt, error)
	MintCertificate(ctx context.Context, meta ledger.CertificateMetadata) (ledger.MintResult, error)
	Balance(ctx context.Context) (ledger.Balance, error)
	Network() string
}

// StatusReporter produces the payload for status_check dispatches.
type StatusReporter interface {
	Snapshot(ctx context.Context) any
}

// Dispatcher routes classified commands to the ledger gateway. Dispatch
// never returns an error and never panics outward: gateway failures become
// Results with success=false and a "_failed" action.
type Dispatcher struct {
	gateway Gateway
	builder *audit.Builder
	status  StatusReporter
	metrics *Metrics
}

// NewDispatcher creates a Dispatcher. status and metrics may be nil.
func NewDispatcher(gateway Gateway, builder *audit.Builder, status StatusReporter, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		builder: builder,
		status:  status,
		metrics: metrics,
	}
}

// Dispatch classifies and executes one command. Each successful dispatch
// invokes exactly one primary gateway operation; unknown commands invoke
// none.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) Result {
	classified := intent.Classify(cmd.Text)
	if d.metrics != nil {
		d.metrics.IncDispatched(string(classified))
	}
	slog.DebugContext(ctx, "command classified", "intent", classified, "command", cmd.Text)

	var result Result
	switch classified {
	case intent.BalanceQuery:
		result = d.dispatchBalance(ctx)
	case intent.NFTMint:
		result = d.dispatchMint(ctx, cmd)
	case intent.AuditLog:
		result = d.dispatchAuditLog(ctx, cmd)
	case intent.ProductAnalysis:
		result = d.dispatchAnalysis(ctx, cmd)
	case intent.StatusCheck:
		result = d.dispatchStatus(ctx)
	default:
		result = unknownResult()
	}

	if !result.Success && d.metrics != nil {
		d.metrics.IncFailed(result.Action)
	}
	return result
}

// failed converts a gateway error into the uniform failure Result. The
// underlying message is embedded in the explanation; the error never
// propagates.
func failed(ctx context.Context, i intent.Intent, err error) Result {
	slog.WarnContext(ctx, "dispatch failed", "intent", i, "error", err)
	return Result{
		Success:     false,
		Action:      i.Failed(),
		Explanation: fmt.Sprintf("The %s operation failed: %v", i, err),
	}
}

func (d *Dispatcher) dispatchBalance(ctx context.Context) Result {
	bal, err := d.gateway.Balance(ctx)
	if err != nil {
		return failed(ctx, intent.BalanceQuery, err)
	}
	return Result{
		Success: true,
		Action:  string(intent.BalanceQuery),
		Payload: BalancePayload{
			AccountID: bal.AccountID,
			Hbars:     bal.Hbars,
			Network:   d.gateway.Network(),
		},
		Explanation: fmt.Sprintf("Account %s holds %s on %s.", bal.AccountID, bal.Hbars, d.gateway.Network()),
	}
}

func (d *Dispatcher) dispatchMint(ctx context.Context, cmd Command) Result {
	params := extractMintParams(cmd.Text, cmd.Context)

	mint, err := d.gateway.MintCertificate(ctx, ledger.CertificateMetadata{
		ProductID:         params.ProductID,
		AuthenticityScore: params.Score,
	})
	if err != nil {
		return failed(ctx, intent.NFTMint, err)
	}

	txID := mint.Receipt.TransactionID
	return Result{
		Success: true,
		Action:  string(intent.NFTMint),
		Payload: MintPayload{
			Params:      params,
			TokenID:     mint.Receipt.TokenID,
			MetadataURI: mint.MetadataURI,
			AuditLogged: mint.AuditLogged,
		},
		Explanation: fmt.Sprintf(
			"Minted authenticity certificate %s for product %s with score %.2f.",
			mint.Receipt.TokenID, params.ProductID, params.Score),
		BlockchainTransaction: txID,
		VerificationURL:       ledger.VerificationURL(d.gateway.Network(), txID),
	}
}

func (d *Dispatcher) dispatchAuditLog(ctx context.Context, cmd Command) Result {
	params := extractAuditParams(cmd.Text, cmd.Context)

	rec := d.builder.Build(string(intent.AuditLog), cmd.Text, params.Message, 1.0, params.Message)
	receipt, err := d.gateway.AppendLogMessage(ctx, rec)
	if err != nil {
		return failed(ctx, intent.AuditLog, err)
	}

	return Result{
		Success: true,
		Action:  string(intent.AuditLog),
		Payload: AuditPayload{
			Message:        params.Message,
			RecordID:       rec.ID,
			SequenceNumber: receipt.SequenceNumber,
		},
		Explanation: fmt.Sprintf(
			"Appended audit entry %q to the ledger log (sequence %d).",
			params.Message, receipt.SequenceNumber),
		BlockchainTransaction: receipt.TransactionID,
		VerificationURL:       ledger.VerificationURL(d.gateway.Network(), receipt.TransactionID),
	}
}

func (d *Dispatcher) dispatchAnalysis(ctx context.Context, cmd Command) Result {
	params := extractAnalyzeParams(cmd.Text, cmd.Context)
	product := analysis.Product{
		Name:           params.Name,
		Price:          params.Price,
		SellerVerified: params.SellerVerified,
	}
	res := analysis.Analyze(product)

	rec := d.builder.Build(string(intent.ProductAnalysis), product, res, res.Confidence, res.Reasoning)
	receipt, err := d.gateway.AppendLogMessage(ctx, rec)
	if err != nil {
		return failed(ctx, intent.ProductAnalysis, err)
	}

	verdict := "appears authentic"
	if res.IsCounterfeit {
		verdict = "is likely counterfeit"
	}
	return Result{
		Success: true,
		Action:  string(intent.ProductAnalysis),
		Payload: res,
		Explanation: fmt.Sprintf(
			"%q (price %.2f) %s with authenticity score %.2f.",
			params.Name, params.Price, verdict, res.AuthenticityScore),
		BlockchainTransaction: receipt.TransactionID,
		VerificationURL:       ledger.VerificationURL(d.gateway.Network(), receipt.TransactionID),
	}
}

func (d *Dispatcher) dispatchStatus(ctx context.Context) Result {
	var payload any
	if d.status != nil {
		payload = d.status.Snapshot(ctx)
	}
	return Result{
		Success:     true,
		Action:      string(intent.StatusCheck),
		Payload:     payload,
		Explanation: fmt.Sprintf("Service is online, connected to %s.", d.gateway.Network()),
	}
}
