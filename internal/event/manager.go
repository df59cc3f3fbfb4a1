package event

import (
	"go.uber.org/zap"
	"sync"
)

const listenerBuffer = 64

var (
	mu        sync.RWMutex
	listeners = make([]*Listener, 0)
)

type Listener struct {
	eventType Type
	channel   chan interface{}
}

func AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := Listener{
		eventType: eventType,
		channel:   make(chan interface{}, listenerBuffer),
	}

	mu.Lock()
	listeners = append(listeners, &listener)
	mu.Unlock()

	go func() {
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

// EmitEvent hands msg to every listener of eventType without waiting on them.
// A listener whose buffer is full misses the event.
func EmitEvent(eventType Type, msg interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	if len(listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}
	for _, listener := range listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			select {
			case listener.channel <- msg:
			default:
				zap.L().With(zap.String("type", string(eventType))).Warn("EventManager: Listener is full, event dropped")
			}
		}
	}
}

// RemoveEventListeners stops every listener goroutine.
func RemoveEventListeners() {
	mu.Lock()
	defer mu.Unlock()

	for _, listener := range listeners {
		close(listener.channel)
	}
	listeners = make([]*Listener, 0)
}
