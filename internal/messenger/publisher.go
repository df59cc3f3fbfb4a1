package messenger

import (
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

type Envelope struct {
	Type   event.Type    `json:"type"`
	Action entity.Action `json:"action"`
}

type Sender interface {
	SendMessage(item Item, routingKey string, body []byte, reliable bool) error
}

// EventPublisher forwards committed marketplace events to the broker. The
// event type is used as routing key.
type EventPublisher struct {
	sender Sender
}

func NewEventPublisher(sender Sender) EventPublisher {
	return EventPublisher{sender}
}

// Listen registers the publisher for every event type.
func (p EventPublisher) Listen() {
	for _, t := range event.AllTypes {
		eventType := t
		event.AddEventListener(eventType, func(msg interface{}) {
			p.Publish(eventType, msg)
		})
	}
}

func (p EventPublisher) Publish(eventType event.Type, msg interface{}) {
	action, ok := msg.(entity.Action)
	if !ok {
		zap.L().With(zap.String("type", string(eventType))).Warn("[Queue] Unexpected event payload")
		return
	}

	body, err := json.Marshal(Envelope{Type: eventType, Action: action})
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to encode event")
		return
	}

	if err := p.sender.SendMessage(MarketplaceEvents, string(eventType), body, false); err != nil {
		zap.L().With(zap.Error(err), zap.String("type", string(eventType)), zap.String("action", action.Id)).Error("[Queue] Failed to publish event")
	}
}

func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(body, &env)

	return env, err
}
