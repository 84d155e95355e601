package intent

import "strings"

// predicate reports whether a normalized (lower-cased, trimmed) command
// matches one intent's trigger condition.
type predicate func(text string) bool

// predicateGroup pairs an intent with its trigger predicate. Groups are
// evaluated in order and the first match wins, so the ordering encodes
// priority when trigger words co-occur ("verify the mint status" is nft_mint,
// not product_analysis). Do not reorder without revisiting every downstream
// consumer that depends on this precedence.
type predicateGroup struct {
	intent Intent
	match  predicate
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

var groups = []predicateGroup{
	{BalanceQuery, func(t string) bool {
		return containsAny(t, "balance", "how much", "account status", "my hbar")
	}},
	{NFTMint, func(t string) bool {
		return containsAny(t, "mint", "create") && containsAny(t, "nft", "certificate", "token")
	}},
	{AuditLog, func(t string) bool {
		return containsAny(t, "audit", "log", "record", "submit message")
	}},
	{ProductAnalysis, func(t string) bool {
		return containsAny(t, "analyze", "check", "verify", "authentic")
	}},
	{StatusCheck, func(t string) bool {
		return containsAny(t, "status", "health", "info") ||
			(strings.Contains(t, "what") && strings.Contains(t, "doing"))
	}},
}

// Classify maps free-text input to exactly one Intent. It is pure and total:
// it never fails and never blocks. Matching operates on a lower-cased,
// trimmed copy of the input.
func Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, g := range groups {
		if g.match(normalized) {
			return g.intent
		}
	}
	return Unknown
}
