package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Default(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_Name(t *testing.T) {
	s := Default()

	s.Name = ""
	assert.Error(t, s.Validate(), "empty name")

	s.Name = string(make([]byte, 101))
	assert.Error(t, s.Validate(), "name over 100 chars")
}

func TestValidate_Rules(t *testing.T) {
	s := Default()
	s.EntryRules = "unknown_ind(5) > 1"
	assert.Error(t, s.Validate(), "unknown indicator in entry rules")

	s = Default()
	s.ExitRules = "rsi(14)" // no comparison operator
	assert.Error(t, s.Validate(), "malformed exit rules")

	s = Default()
	s.EntryRules = ""
	s.ExitRules = ""
	assert.NoError(t, s.Validate(), "empty rule strings are allowed")
}

func TestValidate_SizingMethod(t *testing.T) {
	s := Default()
	s.PositionSizing.Method = "martingale"
	assert.Error(t, s.Validate())

	for _, m := range []SizingMethod{SizingFixed, SizingPercentage, SizingRiskBased} {
		s.PositionSizing.Method = m
		assert.NoError(t, s.Validate(), string(m))
	}
}

func TestValidate_RiskRanges(t *testing.T) {
	tests := []struct {
		name    string
		stop    float64
		profit  float64
		wantErr bool
	}{
		{"valid", 5, 15, false},
		{"stop zero", 0, 15, true},
		{"stop over 100", 101, 15, true},
		{"stop at 100", 100, 15, false},
		{"profit zero", 5, 0, true},
		{"profit over 1000", 5, 1001, true},
		{"profit at 1000", 5, 1000, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			s.RiskManagement.StopLossPct = &tc.stop
			s.RiskManagement.TakeProfitPct = &tc.profit
			err := s.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	trailing := 8.0
	s := Default()
	s.RiskManagement.TrailingStop = true
	s.RiskManagement.TrailingStopPct = &trailing

	data, err := s.MarshalDocument()
	require.NoError(t, err)

	got, err := UnmarshalDocument(data)
	require.NoError(t, err)

	assert.Equal(t, s, got, "round-trip must yield an identical record")
}

func TestLoad_FromYAML(t *testing.T) {
	content := []byte(`
name: RSI Reversal
entry_rules: "rsi(14) < 30 AND price > sma(200)"
exit_rules: "rsi(14) > 70"
position_sizing:
  method: percentage
  value: 10
risk_management:
  stop_loss_pct: 5
  take_profit_pct: 15
  trailing_stop: false
`)
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, content, 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "RSI Reversal", s.Name)
	assert.Equal(t, SizingPercentage, s.PositionSizing.Method)
	require.NotNil(t, s.RiskManagement.StopLossPct)
	assert.Equal(t, 5.0, *s.RiskManagement.StopLossPct)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	content := []byte(`
name: Broken
entry_rules: "fancy_indicator(3) > 1"
exit_rules: ""
position_sizing:
  method: percentage
  value: 10
`)
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := Load(path)
	assert.Error(t, err, "unknown indicator must fail validation")
}
