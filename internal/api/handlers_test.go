package api

import (
	"testing"

	"github.com/zubeidhendricks/africhain/internal/audit"
	"github.com/zubeidhendricks/africhain/internal/ledger"
)

// newTestGateway builds a gateway over the in-memory ledger client, with an
// in-memory audit mirror, the way tests everywhere in this repo do.
func newTestGateway(t *testing.T, client *ledger.InMemoryClient) (*ledger.Gateway, *audit.InMemoryRepository) {
	t.Helper()

	mirror := audit.NewInMemoryRepository()
	gw, err := ledger.NewGateway(ledger.GatewayConfig{
		Client:   client,
		Channels: ledger.NewInMemoryChannelStore(""),
		Builder:  audit.NewBuilder("0.0.12345", "testnet"),
		Mirror:   mirror,
		Network:  "testnet",
	})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	return gw, mirror
}
