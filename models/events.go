package models

import (
	"time"
)

// EventType is the type of an event emitted by the executor
type EventType string

const (
	// Workflow events, one set per request
	EventWorkflowStarted   EventType = "workflow.started"
	EventWorkflowCompleted EventType = "workflow.completed"
	EventWorkflowError     EventType = "workflow.error"

	// Step events
	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepError     EventType = "step.error"
)

// Event is a generic executor event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// EventListener must be implemented to receive events from the executor
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc is an adapter to use functions as EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
