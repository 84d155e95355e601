// Package intent classifies natural-language commands into a closed set of
// ledger intents for the command dispatcher.
package intent

// Intent is the classified purpose of a natural-language command.
type Intent string

// The closed set of intents. Classify never returns a value outside this set.
const (
	BalanceQuery    Intent = "balance_query"
	NFTMint         Intent = "nft_mint"
	AuditLog        Intent = "audit_log"
	ProductAnalysis Intent = "product_analysis"
	StatusCheck     Intent = "status_check"
	Unknown         Intent = "unknown"
)

// UnknownCommand is the action reported for commands that match no intent.
// It is an action label, not a classifiable intent.
const UnknownCommand = "unknown_command"

// Valid reports whether i is one of the classifiable intents.
func Valid(i Intent) bool {
	switch i {
	case BalanceQuery, NFTMint, AuditLog, ProductAnalysis, StatusCheck, Unknown:
		return true
	}
	return false
}

// Failed returns the action label for a dispatch that reached the ledger
// gateway and failed, e.g. "nft_mint_failed".
func (i Intent) Failed() string {
	return string(i) + "_failed"
}
