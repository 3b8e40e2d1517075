package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"moneyboard/internal/core"
)

// Action says what happened to the entity named by an event.
type Action string

const (
	ActionCreated         Action = "created"
	ActionUpdated         Action = "updated"
	ActionDeleted         Action = "deleted"
	ActionCategoryChanged Action = "category_changed"
)

// TransactionEvent announces a change that affects dashboard summaries.
// It is lightweight: consumers reload whatever they need from the store.
type TransactionEvent struct {
	Action    Action        `json:"action"`
	Kind      core.Kind     `json:"kind,omitempty"`
	ID        int64         `json:"id"`
	Periods   []core.Period `json:"periods,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewTransactionEvent builds an event for kind/id touching the months of dates.
func NewTransactionEvent(action Action, kind core.Kind, id int64, dates ...core.Date) *TransactionEvent {
	ev := &TransactionEvent{Action: action, Kind: kind, ID: id, Timestamp: time.Now().UTC()}
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		p := core.PeriodOf(d)
		if !containsPeriod(ev.Periods, p) {
			ev.Periods = append(ev.Periods, p)
		}
	}
	return ev
}

// NewCategoryEvent builds an event for a category change. Category names
// and colors appear in every summary, so it names no period.
func NewCategoryEvent(id int64) *TransactionEvent {
	return &TransactionEvent{Action: ActionCategoryChanged, ID: id, Timestamp: time.Now().UTC()}
}

func containsPeriod(ps []core.Period, p core.Period) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		if !ev.Kind.IsValid() {
			return nil, fmt.Errorf("event %s: invalid kind %q", ev.Action, ev.Kind)
		}
	case ActionCategoryChanged:
	default:
		return nil, fmt.Errorf("unknown event action %q", ev.Action)
	}
	return &ev, nil
}
