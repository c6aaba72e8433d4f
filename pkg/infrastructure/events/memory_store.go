package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type InMemoryEventStore struct {
	log         *logrus.Entry
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore(log *logrus.Entry) *InMemoryEventStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &InMemoryEventStore{
		log:         log,
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	versioned := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)

	handlers := s.handlersFor(versioned.EventType)
	s.mutex.Unlock()

	for _, handler := range handlers {
		if err := handler.Handle(versioned); err != nil {
			s.log.WithError(err).WithField("event_type", versioned.EventType).
				Warn("event handler failed")
		}
	}
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stream := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(stream) {
		return []Event{}, nil
	}
	out := make([]Event, len(stream)-fromVersion+1)
	copy(out, stream[fromVersion-1:])
	return out, nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}
	out := make([]Event, len(s.allEvents)-fromPosition)
	copy(out, s.allEvents[fromPosition:])
	return out, nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}

func (s *InMemoryEventStore) handlersFor(eventType string) []EventHandler {
	var matched []EventHandler
	for _, handler := range s.subscribers[eventType] {
		if handler.CanHandle(eventType) {
			matched = append(matched, handler)
		}
	}
	return matched
}
