package recommend

import (
	"fmt"
	"math"
)

// Parameter defaults.
const (
	DefaultTopN  = 7
	DefaultAlpha = 0.6
	DefaultBeta  = 0.35
	DefaultGamma = 0.1
)

// Params are the per-request ranking knobs.
type Params struct {
	// TopN caps the number of results. Zero yields no results.
	TopN int `json:"top_n"`
	// Alpha is the semantic share of the text score; 1-Alpha goes to BM25.
	Alpha float64 `json:"alpha"`
	// Beta is the grade-match share of the final score; 1-Beta goes to text.
	Beta float64 `json:"beta"`
	// Gamma scales the automation/duration component.
	Gamma float64 `json:"gamma"`
}

// DefaultParams returns TopN=7, Alpha=0.6, Beta=0.35, Gamma=0.1.
func DefaultParams() Params {
	return Params{
		TopN:  DefaultTopN,
		Alpha: DefaultAlpha,
		Beta:  DefaultBeta,
		Gamma: DefaultGamma,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.TopN < 0 {
		return fmt.Errorf("%w: top_n %d is negative", ErrInvalidParams, p.TopN)
	}
	if !unitInterval(p.Alpha) {
		return fmt.Errorf("%w: alpha %v outside [0,1]", ErrInvalidParams, p.Alpha)
	}
	if !unitInterval(p.Beta) {
		return fmt.Errorf("%w: beta %v outside [0,1]", ErrInvalidParams, p.Beta)
	}
	if math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) || p.Gamma < 0 {
		return fmt.Errorf("%w: gamma %v must be finite and non-negative", ErrInvalidParams, p.Gamma)
	}
	return nil
}

func unitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// RequestOption adjusts Params for a single request.
type RequestOption func(*Params)

// WithTopN sets the result count.
func WithTopN(n int) RequestOption {
	return func(p *Params) {
		p.TopN = n
	}
}

// WithAlpha sets the semantic/lexical balance.
func WithAlpha(alpha float64) RequestOption {
	return func(p *Params) {
		p.Alpha = alpha
	}
}

// WithBeta sets the grade-match weight.
func WithBeta(beta float64) RequestOption {
	return func(p *Params) {
		p.Beta = beta
	}
}

// WithGamma sets the automation/duration weight.
func WithGamma(gamma float64) RequestOption {
	return func(p *Params) {
		p.Gamma = gamma
	}
}

// WithParams replaces every parameter.
func WithParams(params Params) RequestOption {
	return func(p *Params) {
		*p = params
	}
}
