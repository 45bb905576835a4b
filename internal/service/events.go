package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventSettingsSaved   EventType = "settings_saved"
	EventSettingsDeleted EventType = "settings_deleted"
	EventSessionOpened   EventType = "session_opened"
	EventSessionTyped    EventType = "session_typed"
	EventSessionReset    EventType = "session_reset"
	EventSessionDeleted  EventType = "session_deleted"
	EventSheetImported   EventType = "sheet_imported"
	EventConfigReloaded  EventType = "config_reloaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
