// Package analysis provides the deterministic authenticity scoring heuristic
// used to decide whether a product looks counterfeit and whether it qualifies
// for a certificate mint.
package analysis

import (
	"fmt"
	"strings"
)

// Scoring constants. The heuristic starts from a neutral baseline and moves
// with coarse signals; the iPhone penalty targets a known low-price scam
// pattern and is intentionally hard-coded.
const (
	BaseScore          = 0.5
	HighPriceBonus     = 0.2
	VerifiedBonus      = 0.2
	ScamPatternPenalty = 0.4

	HighPriceThreshold    = 1000.0
	ScamPriceThreshold    = 300.0
	CounterfeitThreshold  = 0.5
	MintEligibleThreshold = 0.7
)

// Product is the input to the scoring heuristic.
type Product struct {
	Name           string  `json:"product_name"`
	Price          float64 `json:"price"`
	SellerVerified bool    `json:"seller_verified"`
}

// Result is the outcome of analyzing a product. IsCounterfeit is derived
// strictly as Score < CounterfeitThreshold.
type Result struct {
	AuthenticityScore float64  `json:"authenticity_score"`
	IsCounterfeit     bool     `json:"is_counterfeit"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	Evidence          []string `json:"evidence"`
}

// MintEligible reports whether the analysis qualifies the product for a
// certificate mint.
func (r Result) MintEligible() bool {
	return r.AuthenticityScore > MintEligibleThreshold
}

// Score maps a product to an authenticity score in [0,1]. Deterministic and
// pure: the same product always yields the same score.
func Score(p Product) float64 {
	score := BaseScore
	if p.Price > HighPriceThreshold {
		score += HighPriceBonus
	}
	if p.SellerVerified {
		score += VerifiedBonus
	}
	if strings.Contains(strings.ToLower(p.Name), "iphone") && p.Price < ScamPriceThreshold {
		score -= ScamPatternPenalty
	}
	return clamp(score, 0, 1)
}

// Analyze scores a product and assembles the full result with reasoning and
// an ordered evidence trail describing each signal that fired.
func Analyze(p Product) Result {
	evidence := []string{fmt.Sprintf("baseline score %.2f", BaseScore)}
	if p.Price > HighPriceThreshold {
		evidence = append(evidence, fmt.Sprintf("price %.2f above %.0f threshold (+%.2f)", p.Price, HighPriceThreshold, HighPriceBonus))
	}
	if p.SellerVerified {
		evidence = append(evidence, fmt.Sprintf("seller verified (+%.2f)", VerifiedBonus))
	}
	if strings.Contains(strings.ToLower(p.Name), "iphone") && p.Price < ScamPriceThreshold {
		evidence = append(evidence, fmt.Sprintf("iphone under %.0f matches known scam pattern (-%.2f)", ScamPriceThreshold, ScamPatternPenalty))
	}

	score := Score(p)
	counterfeit := score < CounterfeitThreshold

	verdict := "likely authentic"
	if counterfeit {
		verdict = "likely counterfeit"
	}

	return Result{
		AuthenticityScore: score,
		IsCounterfeit:     counterfeit,
		Confidence:        confidence(score),
		Reasoning:         fmt.Sprintf("%q scored %.2f: %s", p.Name, score, verdict),
		Evidence:          evidence,
	}
}

// confidence expresses how far the score sits from the counterfeit boundary,
// normalized to [0,1]. Scores at the boundary are the least confident.
func confidence(score float64) float64 {
	return clamp(2*abs(score-CounterfeitThreshold), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
