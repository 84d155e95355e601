package analysis

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    float64
	}{
		{
			name:    "baseline product",
			product: Product{Name: "Handwoven Basket", Price: 45},
			want:    0.5,
		},
		{
			name:    "high price",
			product: Product{Name: "Leather Jacket", Price: 1200},
			want:    0.7,
		},
		{
			name:    "verified seller",
			product: Product{Name: "Leather Jacket", Price: 500, SellerVerified: true},
			want:    0.7,
		},
		{
			name:    "high price and verified",
			product: Product{Name: "Gold Necklace", Price: 2500, SellerVerified: true},
			want:    0.9,
		},
		{
			name:    "cheap iphone scam pattern",
			product: Product{Name: "iPhone 15 Pro", Price: 150},
			want:    0.1,
		},
		{
			name:    "cheap iphone case insensitive",
			product: Product{Name: "IPHONE charger bundle", Price: 99},
			want:    0.1,
		},
		{
			name:    "expensive iphone is not penalized",
			product: Product{Name: "iPhone 15 Pro", Price: 1100},
			want:    0.7,
		},
		{
			name:    "iphone at exactly 300 is not penalized",
			product: Product{Name: "iPhone SE", Price: 300},
			want:    0.5,
		},
		{
			name:    "price exactly 1000 gets no bonus",
			product: Product{Name: "Sculpture", Price: 1000},
			want:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.product)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%+v) = %v, want %v", tt.product, got, tt.want)
			}
		})
	}
}

// TestScoreBounds checks the [0,1] clamp across a sweep of inputs, including
// adversarial prices.
func TestScoreBounds(t *testing.T) {
	products := []Product{
		{Name: "iphone", Price: -50},
		{Name: "iphone", Price: 0},
		{Name: "anything", Price: math.MaxFloat64, SellerVerified: true},
		{Name: "", Price: -1, SellerVerified: true},
		{Name: "iphone", Price: 299.99, SellerVerified: false},
	}
	for _, p := range products {
		got := Score(p)
		if got < 0 || got > 1 {
			t.Errorf("Score(%+v) = %v, outside [0,1]", p, got)
		}
	}
}

// TestAnalyzeCounterfeitInvariant pins IsCounterfeit == (score < 0.5) for
// every result produced.
func TestAnalyzeCounterfeitInvariant(t *testing.T) {
	products := []Product{
		{Name: "iPhone 12", Price: 120},
		{Name: "Basket", Price: 50},
		{Name: "Basket", Price: 50, SellerVerified: true},
		{Name: "Necklace", Price: 5000, SellerVerified: true},
	}
	for _, p := range products {
		r := Analyze(p)
		if r.IsCounterfeit != (r.AuthenticityScore < CounterfeitThreshold) {
			t.Errorf("Analyze(%+v): IsCounterfeit=%v inconsistent with score %v",
				p, r.IsCounterfeit, r.AuthenticityScore)
		}
	}
}

func TestAnalyzeEvidence(t *testing.T) {
	r := Analyze(Product{Name: "Gold Necklace", Price: 2500, SellerVerified: true})
	// baseline + high price + verified seller
	if len(r.Evidence) != 3 {
		t.Fatalf("expected 3 evidence entries, got %d: %v", len(r.Evidence), r.Evidence)
	}
	if r.Evidence[0] != "baseline score 0.50" {
		t.Errorf("evidence[0] = %q, want baseline entry first", r.Evidence[0])
	}
	if r.Reasoning == "" {
		t.Error("expected non-empty reasoning")
	}
}

func TestMintEligible(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{"above threshold", Result{AuthenticityScore: 0.9}, true},
		{"exactly threshold", Result{AuthenticityScore: 0.7}, false},
		{"below threshold", Result{AuthenticityScore: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.MintEligible(); got != tt.want {
				t.Errorf("MintEligible() with score %v = %v, want %v", tt.r.AuthenticityScore, got, tt.want)
			}
		})
	}
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	for _, p := range []Product{
		{Name: "iphone", Price: 100},
		{Name: "Basket", Price: 10},
		{Name: "Necklace", Price: 9999, SellerVerified: true},
	} {
		r := Analyze(p)
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("Analyze(%+v).Confidence = %v, outside [0,1]", p, r.Confidence)
		}
	}
}
