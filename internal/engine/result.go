package engine

// Result is the engine's answer for a single request. The JSON shape is a
// wire contract consumed by the orchestrator; fields must not be renamed or
// extended.
type Result struct {
	Action             Action  `json:"action"`
	Size               float64 `json:"size"`
	Value              float64 `json:"value"`
	Reason             string  `json:"reason"`
	AvailableCashAfter float64 `json:"available_cash_after"`
	PositionAfter      float64 `json:"position_after"`
	Stopped            bool    `json:"stopped"`
}

// signal is a raw generator recommendation, before capital constraints.
type signal struct {
	Action Action
	Size   float64
	Reason string
}

func holdSignal(reason string) signal {
	return signal{Action: ActionHold, Reason: reason}
}
