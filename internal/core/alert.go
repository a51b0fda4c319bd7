package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	AlertTypeBudget = "BUDGET_ALERT"
	AlertTypeTest   = "TEST"
)

// Payload keys of a budget alert.
const (
	AlertKeyOwnerID = "ownerId"
	AlertKeyMonth   = "month"
	AlertKeyYear    = "year"
	AlertKeySpent   = "spent"
	AlertKeyBudget  = "budget"
	AlertKeyMessage = "message"
)

const BudgetLimitReached = "Budget limit reached"

// AlertEvent is handed to a publisher once and then forgotten.
type AlertEvent struct {
	Type    string
	Payload map[string]any
}

func NewBudgetAlert(ownerID int64, month, year int, spent, limit decimal.Decimal) AlertEvent {
	return AlertEvent{
		Type: AlertTypeBudget,
		Payload: map[string]any{
			AlertKeyOwnerID: ownerID,
			AlertKeyMonth:   month,
			AlertKeyYear:    year,
			AlertKeySpent:   spent,
			AlertKeyBudget:  limit,
			AlertKeyMessage: BudgetLimitReached,
		},
	}
}

// OwnerID reports the owner the event is addressed to, if any.
func (e AlertEvent) OwnerID() (int64, bool) {
	switch v := e.Payload[AlertKeyOwnerID].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	}
	return 0, false
}

// Envelope renders the event as {"type": ..., "data": ...} with decimal
// values written as JSON numbers.
func (e AlertEvent) Envelope() map[string]any {
	data := make(map[string]any, len(e.Payload))
	for k, v := range e.Payload {
		if d, ok := v.(decimal.Decimal); ok {
			data[k] = json.Number(d.String())
			continue
		}
		data[k] = v
	}
	return map[string]any{"type": e.Type, "data": data}
}

func (e AlertEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Envelope())
}
