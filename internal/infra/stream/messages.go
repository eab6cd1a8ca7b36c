package stream

import (
	"prohibition/internal/domain"
	"prohibition/internal/engine"
)

// Message types pushed to clients.
const (
	MsgTypeTick = "tick"
	MsgTypeLoad = "load"
)

// TickMessage summarises one committed tick.
type TickMessage struct {
	Type        string         `json:"type"`
	Tick        uint64         `json:"tick"`
	Productions int            `json:"productions"`
	Units       int64          `json:"units"`
	Trades      []domain.Trade `json:"trades"`
	Volume      domain.Money   `json:"volume"`
	Clamped     int            `json:"clamped"`
}

// NewTickMessage builds the push payload for res.
func NewTickMessage(res engine.Result) TickMessage {
	msg := TickMessage{
		Type:        MsgTypeTick,
		Tick:        res.Tick,
		Productions: len(res.Productions),
		Trades:      res.Trades,
		Clamped:     len(res.Report.Clamped),
	}
	if msg.Trades == nil {
		msg.Trades = []domain.Trade{}
	}
	for _, p := range res.Productions {
		msg.Units += p.Line.Quantity
	}
	for _, t := range res.Trades {
		msg.Volume += t.Value()
	}
	return msg
}

// LoadMessage tells clients the whole world was replaced.
type LoadMessage struct {
	Type string `json:"type"`
	Tick uint64 `json:"tick"`
}
