package features

import "fmt"

// NoResultPolicy decides how an abandoned match feeds team form.
type NoResultPolicy string

const (
	// NoResultLoss records a no-result as a non-win for both sides.
	NoResultLoss NoResultPolicy = "loss"
	// NoResultNeutral leaves matches, streak and recent form untouched.
	NoResultNeutral NoResultPolicy = "neutral"
)

// Params configures window sizes and smoothing priors. The engine is
// constructed with an explicit Params value; there is no global state.
type Params struct {
	FormWindow        int            `json:"form_window"`         // recent-form window (matches)
	TossFormWindow    int            `json:"toss_form_window"`    // form-toss history window (matches)
	BallWindow        int            `json:"ball_window"`         // rolling innings window (innings)
	H2HPriorMatches   float64        `json:"h2h_prior_matches"`   // Laplace prior added to toss wins
	H2HPriorConverted float64        `json:"h2h_prior_converted"` // Laplace prior added to converted toss wins
	NoResult          NoResultPolicy `json:"no_result_policy"`
}

// DefaultParams returns the production window sizes and priors.
func DefaultParams() Params {
	return Params{
		FormWindow:        5,
		TossFormWindow:    5,
		BallWindow:        20,
		H2HPriorMatches:   4,
		H2HPriorConverted: 2,
		NoResult:          NoResultLoss,
	}
}

// Validate checks window sizes, priors and the no-result policy.
func (p Params) Validate() error {
	if p.FormWindow < 1 {
		return fmt.Errorf("form_window must be at least 1")
	}
	if p.TossFormWindow < 1 {
		return fmt.Errorf("toss_form_window must be at least 1")
	}
	if p.BallWindow < 1 {
		return fmt.Errorf("ball_window must be at least 1")
	}
	if p.H2HPriorMatches < 0 || p.H2HPriorConverted < 0 {
		return fmt.Errorf("h2h priors must not be negative")
	}
	if p.H2HPriorConverted > p.H2HPriorMatches {
		return fmt.Errorf("h2h_prior_converted must not exceed h2h_prior_matches")
	}
	switch p.NoResult {
	case NoResultLoss, NoResultNeutral:
	default:
		return fmt.Errorf("no_result_policy must be one of: loss, neutral")
	}
	return nil
}
