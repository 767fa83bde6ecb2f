package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/usecase/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type EventAction string

const (
	Created     EventAction = "created"
	Updated     EventAction = "updated"
	Deactivated EventAction = "deactivated"
	Restored    EventAction = "restored"
	Returned    EventAction = "returned"
)

// Event is the payload stored in the outbox and relayed to subscribers.
type Event struct {
	Kind       string              `json:"kind"`
	Action     EventAction         `json:"action"`
	ID         int64               `json:"id"`
	OccurredAt time.Time           `json:"occurredAt"`
	Record     jsoniter.RawMessage `json:"record"`
}

type Sender interface {
	SendMessage(ctx context.Context, idempotencyKey string, kind repository.OutboxKind, message []byte) error
}

// Publish stores an event for rec. Call it inside the transaction that
// wrote rec so both commit or neither does.
func Publish(ctx context.Context, sender Sender, kind repository.OutboxKind, action EventAction, rec entity.Record) error {
	record, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("can not serialize %s: %w", kind, err)
	}

	payload, err := json.Marshal(Event{
		Kind:       kind.String(),
		Action:     action,
		ID:         rec.Meta().ID,
		OccurredAt: time.Now().UTC(),
		Record:     record,
	})
	if err != nil {
		return fmt.Errorf("can not serialize %s event: %w", kind, err)
	}

	return sender.SendMessage(ctx, uuid.NewString(), kind, payload)
}

func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}
