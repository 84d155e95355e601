package health

import (
	"context"
	"fmt"
	"time"

	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// BalanceProber is the subset of the ledger gateway used for health probes.
type BalanceProber interface {
	Balance(ctx context.Context) (ledger.Balance, error)
}

// LedgerChecker implements health checking for the ledger connection.
// It issues an account balance query, which is free on Hedera and exercises
// the full operator credential path.
type LedgerChecker struct {
	prober  BalanceProber
	timeout time.Duration
}

// NewLedgerChecker creates a new ledger health checker.
func NewLedgerChecker(prober BalanceProber) *LedgerChecker {
	return &LedgerChecker{
		prober:  prober,
		timeout: 5 * time.Second,
	}
}

// HealthCheck performs a health check by querying the operator account balance.
func (l *LedgerChecker) HealthCheck(ctx context.Context) error {
	if l.prober == nil {
		return fmt.Errorf("ledger gateway not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if _, err := l.prober.Balance(ctx); err != nil {
		return fmt.Errorf("ledger unreachable: %w", err)
	}
	return nil
}
