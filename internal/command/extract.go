package command

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction defaults, applied when neither the command text nor the request
// context yields a value. Defaults are silent: extraction fallback is normal
// behavior, never an error surfaced to the caller.
const (
	DefaultProductID    = "12345"
	DefaultScore        = 0.95
	DefaultAuditMessage = "Audit log entry via natural language"
	DefaultProductName  = "Unknown Product"
	DefaultPrice        = 999.99
)

// An extractor pulls one optional field out of the raw command text. The
// extractors for a field run in order and the first non-empty result wins.
type extractor func(text string) (string, bool)

func regexExtractor(re *regexp.Regexp, group int) extractor {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || m[group] == "" {
			return "", false
		}
		return m[group], true
	}
}

func firstMatch(text string, extractors ...extractor) (string, bool) {
	for _, ex := range extractors {
		if v, ok := ex(text); ok {
			return v, true
		}
	}
	return "", false
}

var (
	reProductNumber = regexp.MustCompile(`(?i)product\s+(\d+)`)
	reHashNumber    = regexp.MustCompile(`#(\d+)`)

	rePercentScore = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	reScoreKeyword = regexp.MustCompile(`(?i)score\s+(\d+(?:\.\d+)?)`)

	reQuotedMessage = regexp.MustCompile(`(?i)(?:about|message)\s+"([^"]+)"`)
	reTailMessage   = regexp.MustCompile(`(?i)(?:about|message)\s+(.+)$`)

	reQuotedName  = regexp.MustCompile(`"([^"]+)"`)
	reProductWord = regexp.MustCompile(`(?i)product\s+(\S+)`)
	rePhraseName  = regexp.MustCompile(`(?i)(?:analyze|check|verify)\s+(?:this\s+)?(.+?)(?:\s+(?:for|at|priced)\b|$)`)

	rePrice = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)
)

// extractProductID extracts a numeric product id for minting.
// Order: "product <n>", "#<n>", context, literal default.
func extractProductID(text string, ctx *Context) string {
	if v, ok := firstMatch(text,
		regexExtractor(reProductNumber, 1),
		regexExtractor(reHashNumber, 1),
	); ok {
		return v
	}
	if ctx != nil && ctx.ProductID != "" {
		return ctx.ProductID
	}
	return DefaultProductID
}

// extractScore extracts an authenticity score for minting. Percentages are
// interpreted as value/100; "score 0.8" style values are taken as-is when
// already within [0,1].
func extractScore(text string, ctx *Context) float64 {
	if v, ok := firstMatch(text, regexExtractor(rePercentScore, 1)); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f / 100
		}
	}
	if v, ok := firstMatch(text, regexExtractor(reScoreKeyword, 1)); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if f > 1 {
				return f / 100
			}
			return f
		}
	}
	if ctx != nil && ctx.Score != nil {
		return *ctx.Score
	}
	return DefaultScore
}

// extractAuditMessage extracts the free-text message for an audit log entry.
// Order: quoted message after about/message, unquoted tail after
// about/message, context, literal default.
func extractAuditMessage(text string, ctx *Context) string {
	if v, ok := firstMatch(text,
		regexExtractor(reQuotedMessage, 1),
		regexExtractor(reTailMessage, 1),
	); ok {
		return strings.TrimSpace(v)
	}
	if ctx != nil && ctx.Message != "" {
		return ctx.Message
	}
	return DefaultAuditMessage
}

// extractProductName extracts the product name for analysis.
// Order: quoted phrase, "product <word>", phrase between an analysis verb and
// a for/at/priced stop word, context, literal default.
func extractProductName(text string, ctx *Context) string {
	if v, ok := firstMatch(text,
		regexExtractor(reQuotedName, 1),
		regexExtractor(reProductWord, 1),
		regexExtractor(rePhraseName, 1),
	); ok {
		return strings.TrimSpace(v)
	}
	if ctx != nil && ctx.Product != nil && ctx.Product.Name != "" {
		return ctx.Product.Name
	}
	return DefaultProductName
}

// extractPrice extracts a dollar price for analysis.
func extractPrice(text string, ctx *Context) float64 {
	if v, ok := firstMatch(text, regexExtractor(rePrice, 1)); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if ctx != nil && ctx.Product != nil && ctx.Product.Price > 0 {
		return ctx.Product.Price
	}
	return DefaultPrice
}

// extractSellerVerified has no text form; it comes from context only and
// defaults to unverified.
func extractSellerVerified(ctx *Context) bool {
	return ctx != nil && ctx.Product != nil && ctx.Product.SellerVerified
}
