package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_EndToEndExample(t *testing.T) {
	res, err := Execute(Request{
		Strategy:        ThresholdStrategy{Type: ThresholdAbsolute, Value: 0, ExecutionSize: 100},
		ForecastPrice:   105,
		CurrentPrice:    100,
		CurrentPosition: 0,
		AvailableCash:   100000,
		InitialCapital:  100000,
	})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 100.0, res.Size, 1e-9)
	assert.InDelta(t, 10000.0, res.Value, 1e-9)
	assert.InDelta(t, 90000.0, res.AvailableCashAfter, 1e-9)
	assert.InDelta(t, 100.0, res.PositionAfter, 1e-9)
	assert.False(t, res.Stopped)
}

func TestExecute_HoldIsIdempotent(t *testing.T) {
	req := Request{
		Strategy:        ThresholdStrategy{Type: ThresholdAbsolute, Value: 50, ExecutionSize: 10},
		ForecastPrice:   105,
		CurrentPrice:    100,
		CurrentPosition: 7,
		AvailableCash:   1234,
		InitialCapital:  10000,
	}

	first, err := Execute(req)
	require.NoError(t, err)
	second, err := Execute(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ActionHold, first.Action)
	assert.InDelta(t, req.AvailableCash, first.AvailableCashAfter, 1e-9)
	assert.InDelta(t, req.CurrentPosition, first.PositionAfter, 1e-9)
}

func TestExecute_ValidationErrors(t *testing.T) {
	base := func() Request {
		return Request{
			Strategy:        ThresholdStrategy{Type: ThresholdAbsolute, Value: 1},
			ForecastPrice:   105,
			CurrentPrice:    100,
			CurrentPosition: 0,
			AvailableCash:   1000,
			InitialCapital:  1000,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Request)
		wantCode ErrorCode
	}{
		{"missing strategy", func(r *Request) { r.Strategy = nil }, ErrCodeInvalidStrategy},
		{"zero forecast", func(r *Request) { r.ForecastPrice = 0 }, ErrCodeInvalidParameters},
		{"zero price", func(r *Request) { r.CurrentPrice = 0 }, ErrCodeInvalidPrice},
		{"negative price", func(r *Request) { r.CurrentPrice = -5 }, ErrCodeInvalidPrice},
		{"short position", func(r *Request) { r.CurrentPosition = -1 }, ErrCodeInvalidParameters},
		{"negative cash", func(r *Request) { r.AvailableCash = -1 }, ErrCodeInvalidParameters},
		{"zero capital", func(r *Request) { r.InitialCapital = 0 }, ErrCodeInvalidParameters},
		{"mismatched history", func(r *Request) {
			r.History = OHLC{High: []float64{1, 2}, Low: []float64{1}}
		}, ErrCodeInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)

			_, err := Execute(req)
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantCode, cfgErr.Code)
		})
	}
}

func TestResult_WireShape(t *testing.T) {
	// The orchestrator depends on these exact fields; renames or additions
	// break the contract.
	data, err := json.Marshal(Result{Action: ActionBuy, Size: 1, Value: 100, Reason: "x"})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	want := []string{"action", "size", "value", "reason", "available_cash_after", "position_after", "stopped"}
	assert.Len(t, fields, len(want))
	for _, f := range want {
		assert.Contains(t, fields, f)
	}
}

func TestParseRequest_Threshold(t *testing.T) {
	body := []byte(`{
		"strategy_kind": "threshold",
		"forecast_price": 105,
		"current_price": 100,
		"current_position": 0,
		"available_cash": 100000,
		"initial_capital": 100000,
		"threshold_type": "absolute",
		"threshold_value": 0,
		"execution_size": 100
	}`)

	req, err := ParseRequest(body)
	require.NoError(t, err)

	s, ok := req.Strategy.(ThresholdStrategy)
	require.True(t, ok)
	assert.Equal(t, ThresholdAbsolute, s.Type)
	assert.InDelta(t, 100.0, s.ExecutionSize, 1e-9)

	res, err := Execute(req)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.InDelta(t, 90000.0, res.AvailableCashAfter, 1e-9)
}

func TestParseRequest_Quantile(t *testing.T) {
	body := []byte(`{
		"strategy_kind": "quantile",
		"forecast_price": 9.5,
		"current_price": 9,
		"current_position": 10,
		"available_cash": 1000,
		"initial_capital": 1000,
		"which_history": "close",
		"window_history": 10,
		"execution_size": 4,
		"quantile_ranges": [
			{"low": 0, "high": 50, "action": "sell", "multiplier": 1.0},
			{"low": 50, "high": 100, "action": "buy", "multiplier": 0.5}
		],
		"open_history": [1,2,3,4,5,6,7,8,9,10],
		"high_history": [1,2,3,4,5,6,7,8,9,10],
		"low_history": [1,2,3,4,5,6,7,8,9,10],
		"close_history": [1,2,3,4,5,6,7,8,9,10]
	}`)

	req, err := ParseRequest(body)
	require.NoError(t, err)

	res, err := Execute(req)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action) // rank 90 falls in [50, 100)
	assert.InDelta(t, 2.0, res.Size, 1e-9)
}

func TestParseRequest_QuantileRequiresFullOHLC(t *testing.T) {
	body := []byte(`{
		"strategy_kind": "quantile",
		"forecast_price": 9.5,
		"current_price": 9,
		"current_position": 10,
		"available_cash": 1000,
		"initial_capital": 1000,
		"which_history": "close",
		"window_history": 10,
		"quantile_ranges": [{"low": 0, "high": 100, "action": "buy", "multiplier": 1.0}],
		"close_history": [1,2,3]
	}`)

	_, err := ParseRequest(body)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ohlc_history", cfgErr.Parameter)
}

func TestParseRequest_UnknownKind(t *testing.T) {
	_, err := ParseRequest([]byte(`{"strategy_kind": "martingale"}`))
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ErrCodeInvalidStrategy, cfgErr.Code)
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`{not json`))
	assert.Error(t, err)
}

func TestPortfolioHelpers(t *testing.T) {
	assert.InDelta(t, 1500.0, PortfolioValue(10, 100, 500), 1e-9)
	assert.InDelta(t, 0.5, PortfolioReturn(10, 100, 500, 1000), 1e-9)
	assert.InDelta(t, 0.0, PortfolioReturn(10, 100, 500, 0), 1e-9)
}
