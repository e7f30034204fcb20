package trust

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tier is the discrete confidence level used for color coding.
// No business rule depends on it.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid trust thresholds")

// Thresholds holds the lower bounds (inclusive) of the high and medium tiers,
// expressed as normalized percentages.
//
// Two different threshold sets exist in the wild, so these are configuration
// and never hard-coded at call sites.
type Thresholds struct {
	High int `mapstructure:"high" yaml:"high" json:"high"`
	Low  int `mapstructure:"low" yaml:"low" json:"low"`
}

// DefaultThresholds returns the 70/40 split used by the question list.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 70, Low: 40}
}

// Validate checks that both bounds are percentages and ordered.
func (t Thresholds) Validate() error {
	if t.High < 0 || t.High > 100 || t.Low < 0 || t.Low > 100 {
		return fmt.Errorf("%w: bounds must be within 0-100 (high=%d, low=%d)", ErrInvalidThresholds, t.High, t.Low)
	}
	if t.Low > t.High {
		return fmt.Errorf("%w: low (%d) exceeds high (%d)", ErrInvalidThresholds, t.Low, t.High)
	}
	return nil
}

// Classify maps a normalized percentage to a tier.
func Classify(normalized int, t Thresholds) Tier {
	switch {
	case normalized >= t.High:
		return TierHigh
	case normalized >= t.Low:
		return TierMedium
	default:
		return TierLow
	}
}

// AllTiers returns the tiers from most to least confident.
func AllTiers() []Tier {
	return []Tier{TierHigh, TierMedium, TierLow}
}

// IsValid returns true if the tier is one of the known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierHigh, TierMedium, TierLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// DisplayName returns a human-readable label.
func (t Tier) DisplayName() string {
	switch t {
	case TierHigh:
		return "High"
	case TierMedium:
		return "Medium"
	case TierLow:
		return "Low"
	default:
		return string(t)
	}
}

// MarshalJSON implements json.Marshaler interface.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	tier := Tier(str)
	if !tier.IsValid() {
		return fmt.Errorf("invalid trust tier: %s", str)
	}
	*t = tier
	return nil
}
