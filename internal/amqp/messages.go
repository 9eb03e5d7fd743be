package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FundEventMessage notifies downstream consumers about a petty-cash fund
// lifecycle event. It carries the amounts directly so the worker does not
// have to read the database back.
type FundEventMessage struct {
	EventID     string    `json:"eventId"`
	TenantID    string    `json:"tenantId"`
	Kind        string    `json:"kind"` // created | expense | replenished | closed
	FundID      int64     `json:"fundId"`
	InstituteID int64     `json:"instituteId"`
	AmountCents int64     `json:"amountCents"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewFundEventMessage(tenantID, kind string, fundID, instituteID, amountCents int64) *FundEventMessage {
	return &FundEventMessage{
		EventID:     uuid.NewString(),
		TenantID:    tenantID,
		Kind:        kind,
		FundID:      fundID,
		InstituteID: instituteID,
		AmountCents: amountCents,
		OccurredAt:  time.Now().UTC(),
	}
}

func (m *FundEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FundEventMessageFromJSON(data []byte) (*FundEventMessage, error) {
	var msg FundEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
