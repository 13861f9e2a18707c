package events

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AllEvents subscribes a function handler to every event type
const AllEvents = "*"

type funcHandler struct {
	id      string
	handler EventHandler
}

// EventBus delivers events synchronously, in subscription order, on the
// publishing goroutine. Handlers run without the bus lock held, so they may
// publish or (un)subscribe themselves.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  map[string]Subscriber
	order        []string
	funcHandlers map[string][]funcHandler
	nextFuncID   int
	logger       zerolog.Logger
}

var _ Bus = (*EventBus)(nil)

// NewEventBus creates a new event bus instance
func NewEventBus() *EventBus {
	return NewEventBusWithLogger(log.Logger)
}

// NewEventBusWithLogger creates an event bus that logs through logger
func NewEventBusWithLogger(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers:  make(map[string]Subscriber),
		funcHandlers: make(map[string][]funcHandler),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds subscriber, replacing one registered under the same id
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	id := subscriber.ID()

	eb.mu.Lock()
	if _, exists := eb.subscribers[id]; !exists {
		eb.order = append(eb.order, id)
	}
	eb.subscribers[id] = subscriber
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("Subscriber added")
}

// Unsubscribe removes the subscriber registered under subscriberID
func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	if _, exists := eb.subscribers[subscriberID]; exists {
		delete(eb.subscribers, subscriberID)
		for i, id := range eb.order {
			if id == subscriberID {
				eb.order = append(eb.order[:i], eb.order[i+1:]...)
				break
			}
		}
	}
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
}

// SubscribeFunc registers handler for eventType, or for every type with
// AllEvents. The returned id can be passed to UnsubscribeFunc.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	eb.nextFuncID++
	id := fmt.Sprintf("%s#%d", eventType, eb.nextFuncID)
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], funcHandler{id: id, handler: handler})
	eb.mu.Unlock()

	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", id).
		Msg("Function handler added")
	return id
}

// UnsubscribeFunc removes the function handler with the given id. It
// reports whether a handler was removed.
func (eb *EventBus) UnsubscribeFunc(handlerID string) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, handlers := range eb.funcHandlers {
		for i, h := range handlers {
			if h.id != handlerID {
				continue
			}
			eb.funcHandlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			if len(eb.funcHandlers[eventType]) == 0 {
				delete(eb.funcHandlers, eventType)
			}
			return true
		}
	}
	return false
}

// Publish delivers event to every interested subscriber, then to the
// function handlers for its type, then to AllEvents handlers. A panicking
// receiver is logged and skipped.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.RLock()
	subscribers := make([]Subscriber, 0, len(eb.order))
	for _, id := range eb.order {
		subscribers = append(subscribers, eb.subscribers[id])
	}
	handlers := make([]funcHandler, 0, len(eb.funcHandlers[eventType])+len(eb.funcHandlers[AllEvents]))
	handlers = append(handlers, eb.funcHandlers[eventType]...)
	if eventType != AllEvents {
		handlers = append(handlers, eb.funcHandlers[AllEvents]...)
	}
	eb.mu.RUnlock()

	eb.logger.Debug().
		Str("event_type", eventType).
		Str("match_id", event.MatchID()).
		Msg("Publishing event")

	for _, s := range subscribers {
		if s.InterestedIn(eventType) {
			eb.deliver(s.ID(), event, s.HandleEvent)
		}
	}
	for _, h := range handlers {
		eb.deliver(h.id, event, h.handler)
	}
}

func (eb *EventBus) deliver(receiver string, event Event, handle EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("receiver", receiver).
				Str("event_type", event.Type()).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	handle(event)
}

// GetSubscriberCount returns the number of subscribers
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// GetFuncHandlerCount returns the number of function handlers for eventType
func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.funcHandlers[eventType])
}

// HandlerIDs returns the ids of every function handler, sorted
func (eb *EventBus) HandlerIDs() []string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	ids := make([]string, 0)
	for _, handlers := range eb.funcHandlers {
		for _, h := range handlers {
			ids = append(ids, h.id)
		}
	}
	sort.Strings(ids)
	return ids
}
