// Package status aggregates ledger connectivity, the operator balance, and
// feature flags into the health snapshot served by GET /status and the
// status_check intent.
package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// Snapshot states.
const (
	StateOnline = "online"
	StateError  = "error"
)

// probeTimeout bounds the balance query used as the liveness probe.
const probeTimeout = 5 * time.Second

// Snapshot is the aggregated service status. A probe failure downgrades
// Status to "error" and fills Error; it never propagates.
type Snapshot struct {
	Status    string   `json:"status"`
	AccountID string   `json:"account_id,omitempty"`
	Network   string   `json:"network"`
	Balance   string   `json:"balance,omitempty"`
	Features  []string `json:"features"`
	Error     string   `json:"error,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// BalanceProber is the slice of the ledger gateway the reporter needs.
type BalanceProber interface {
	Balance(ctx context.Context) (ledger.Balance, error)
	Network() string
}

// Reporter builds status snapshots.
type Reporter struct {
	prober   BalanceProber
	features []string
}

// NewReporter creates a Reporter advertising the given feature list.
func NewReporter(prober BalanceProber, features []string) *Reporter {
	return &Reporter{prober: prober, features: features}
}

// Snapshot probes the ledger and assembles the status. It always returns a
// well-formed snapshot; failures are embedded, never thrown.
func (r *Reporter) Snapshot(ctx context.Context) any {
	return r.Report(ctx)
}

// Report is the typed form of Snapshot.
func (r *Reporter) Report(ctx context.Context) Snapshot {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	snap := Snapshot{
		Network:   r.prober.Network(),
		Features:  r.features,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	bal, err := r.prober.Balance(probeCtx)
	if err != nil {
		slog.WarnContext(ctx, "status probe failed", "error", err)
		snap.Status = StateError
		snap.Error = err.Error()
		return snap
	}

	snap.Status = StateOnline
	snap.AccountID = bal.AccountID
	snap.Balance = bal.Hbars
	return snap
}
