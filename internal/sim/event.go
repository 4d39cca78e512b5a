package sim

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeWaveStart
	EventTypeSpawn
	EventTypeDamage
	EventTypeDestroyed
	EventTypeCollect
	EventTypeStateChange
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Simulation tick this occurred in
	Source    string    `json:"source"`    // Source tag (category, "fsm", ...) for rate limiting
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeWaveStart:
		return "wave_start"
	case EventTypeSpawn:
		return "spawn"
	case EventTypeDamage:
		return "damage"
	case EventTypeDestroyed:
		return "destroyed"
	case EventTypeCollect:
		return "collect"
	case EventTypeStateChange:
		return "state_change"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed     int64 `json:"rngSeed"`
	ActiveCount int   `json:"activeCount"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// WaveStartPayload contains wave progression details
type WaveStartPayload struct {
	Wave  int  `json:"wave"`
	Level int  `json:"level"`
	Boss  bool `json:"boss"`
}

// SpawnPayload contains entity spawn details
type SpawnPayload struct {
	Category string  `json:"category"`
	SlotID   uint32  `json:"slotId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	TargetID  uint32 `json:"targetId"`
	Damage    int    `json:"damage"`
	HealthNow int    `json:"healthNow"`
}

// DestroyedPayload contains destruction event details
type DestroyedPayload struct {
	Category string `json:"category"`
	SlotID   uint32 `json:"slotId"`
	Score    int    `json:"score"`
}

// CollectPayload contains item collection details
type CollectPayload struct {
	Kind  string `json:"kind"`
	Coins int    `json:"coins"`
}

// StateChangePayload contains state machine transition details
type StateChangePayload struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Session SessionSnapshot `json:"session"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
