// Package strategy defines the user-facing strategy record: named entry and
// exit rules in the rule language plus position-sizing and risk-management
// configuration. A Strategy is immutable for the duration of a backtest run.
package strategy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/rule"
	"github.com/spf13/viper"
)

// SizingMethod selects how position size is computed on entry.
type SizingMethod string

const (
	SizingFixed      SizingMethod = "fixed"
	SizingPercentage SizingMethod = "percentage"
	SizingRiskBased  SizingMethod = "risk_based"
)

// PositionSizing configures entry sizing. Value is a dollar amount for
// fixed, a percentage of cash for percentage, and a risk percentage for
// risk_based.
type PositionSizing struct {
	Method SizingMethod `json:"method" mapstructure:"method"`
	Value  float64      `json:"value" mapstructure:"value"`
}

// RiskManagement configures protective exits. Percentages are relative to
// the entry price; nil means the protection is not used.
type RiskManagement struct {
	StopLossPct     *float64 `json:"stop_loss_pct,omitempty" mapstructure:"stop_loss_pct"`
	TakeProfitPct   *float64 `json:"take_profit_pct,omitempty" mapstructure:"take_profit_pct"`
	TrailingStop    bool     `json:"trailing_stop" mapstructure:"trailing_stop"`
	TrailingStopPct *float64 `json:"trailing_stop_pct,omitempty" mapstructure:"trailing_stop_pct"`
}

// Strategy is one named trading strategy definition.
type Strategy struct {
	Name           string         `json:"name" mapstructure:"name"`
	Description    string         `json:"description,omitempty" mapstructure:"description"`
	EntryRules     string         `json:"entry_rules" mapstructure:"entry_rules"`
	ExitRules      string         `json:"exit_rules" mapstructure:"exit_rules"`
	PositionSizing PositionSizing `json:"position_sizing" mapstructure:"position_sizing"`
	RiskManagement RiskManagement `json:"risk_management" mapstructure:"risk_management"`
}

// Default returns a usable starter strategy.
func Default() *Strategy {
	stopLoss := 5.0
	takeProfit := 15.0
	return &Strategy{
		Name:       "New Strategy",
		EntryRules: "rsi(14) < 30 AND price > sma(200)",
		ExitRules:  "rsi(14) > 70 OR price < entry_price * 0.95",
		PositionSizing: PositionSizing{
			Method: SizingPercentage,
			Value:  10,
		},
		RiskManagement: RiskManagement{
			StopLossPct:   &stopLoss,
			TakeProfitPct: &takeProfit,
		},
	}
}

// Validate checks the full strategy definition. Rule strings must parse,
// the name must be 1-100 characters, the sizing method must be known, and
// risk percentages must sit in their allowed ranges.
func (s *Strategy) Validate() error {
	if strings.TrimSpace(s.Name) == "" || len(s.Name) > 100 {
		return core.WrapError(core.ErrInvalidStrategy,
			fmt.Errorf("name must be 1-100 characters"))
	}

	if s.EntryRules != "" {
		if _, err := rule.Parse(s.EntryRules); err != nil {
			return core.WrapError(core.ErrInvalidStrategy,
				fmt.Errorf("entry rules: %w", err))
		}
	}
	if s.ExitRules != "" {
		if _, err := rule.Parse(s.ExitRules); err != nil {
			return core.WrapError(core.ErrInvalidStrategy,
				fmt.Errorf("exit rules: %w", err))
		}
	}

	switch s.PositionSizing.Method {
	case SizingFixed, SizingPercentage, SizingRiskBased:
	default:
		return core.WrapError(core.ErrInvalidStrategy,
			fmt.Errorf("unknown position sizing method: %q", s.PositionSizing.Method))
	}

	if p := s.RiskManagement.StopLossPct; p != nil && (*p <= 0 || *p > 100) {
		return core.WrapError(core.ErrInvalidStrategy,
			fmt.Errorf("stop loss percentage must be in (0, 100], got %v", *p))
	}
	if p := s.RiskManagement.TakeProfitPct; p != nil && (*p <= 0 || *p > 1000) {
		return core.WrapError(core.ErrInvalidStrategy,
			fmt.Errorf("take profit percentage must be in (0, 1000], got %v", *p))
	}

	return nil
}

// MarshalDocument serializes the strategy to its key-value document form.
func (s *Strategy) MarshalDocument() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalDocument restores a strategy from its document form.
func UnmarshalDocument(data []byte) (*Strategy, error) {
	var s Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.WrapError(core.ErrInvalidStrategy, err)
	}
	return &s, nil
}

// Load reads a strategy definition from a YAML or JSON file and validates it.
func Load(path string) (*Strategy, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrInvalidStrategy, err)
	}

	var s Strategy
	if err := v.Unmarshal(&s); err != nil {
		return nil, core.WrapError(core.ErrInvalidStrategy, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
