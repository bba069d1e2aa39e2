package workflow

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/simon020286/go-workflow/models"
)

// eventBus delivers events to registered listeners (private).
// Delivery is asynchronous but keeps emission order: a single drain
// goroutine empties the FIFO while it is non-empty.
type eventBus struct {
	listeners []models.EventListener
	mutex     sync.RWMutex

	qmu      sync.Mutex
	pending  *queue.Queue
	draining bool
	idle     *sync.Cond
}

// newEventBus creates a new eventBus instance (private)
func newEventBus() *eventBus {
	eb := &eventBus{
		listeners: make([]models.EventListener, 0),
		pending:   queue.New(),
	}
	eb.idle = sync.NewCond(&eb.qmu)
	return eb
}

// addListener registers a new listener
func (eb *eventBus) addListener(listener models.EventListener) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.listeners = append(eb.listeners, listener)
}

func (eb *eventBus) hasListeners() bool {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.listeners) > 0
}

// Emit queues an event for all registered listeners
func (eb *eventBus) Emit(eventType models.EventType, data map[string]interface{}) {
	if !eb.hasListeners() {
		return
	}

	event := models.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	eb.qmu.Lock()
	defer eb.qmu.Unlock()

	eb.pending.Add(event)
	if !eb.draining {
		eb.draining = true
		go eb.drain()
	}
}

// drain delivers queued events until the queue is empty
func (eb *eventBus) drain() {
	for {
		eb.qmu.Lock()
		if eb.pending.Length() == 0 {
			eb.draining = false
			eb.idle.Broadcast()
			eb.qmu.Unlock()
			return
		}
		event := eb.pending.Remove().(models.Event)
		eb.qmu.Unlock()

		eb.mutex.RLock()
		listeners := make([]models.EventListener, len(eb.listeners))
		copy(listeners, eb.listeners)
		eb.mutex.RUnlock()

		for _, listener := range listeners {
			listener.OnEvent(event)
		}
	}
}

// Wait waits for all pending events to be delivered
func (eb *eventBus) Wait() {
	eb.qmu.Lock()
	defer eb.qmu.Unlock()
	for eb.draining {
		eb.idle.Wait()
	}
}

// EmitWorkflowStarted emits a workflow start event
func (eb *eventBus) EmitWorkflowStarted(workflow, requestID string) {
	eb.Emit(models.EventWorkflowStarted, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
	})
}

// EmitWorkflowCompleted emits a workflow completion event
func (eb *eventBus) EmitWorkflowCompleted(workflow, requestID string, duration time.Duration) {
	eb.Emit(models.EventWorkflowCompleted, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
		"duration":   duration,
	})
}

// EmitWorkflowError emits a workflow error event
func (eb *eventBus) EmitWorkflowError(workflow, requestID string, err error) {
	eb.Emit(models.EventWorkflowError, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
		"error":      err.Error(),
	})
}

// EmitStepStarted emits a step start event
func (eb *eventBus) EmitStepStarted(workflow, requestID, stepType string, index int) {
	eb.Emit(models.EventStepStarted, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
		"step_type":  stepType,
		"index":      index,
	})
}

// EmitStepCompleted emits a step completion event
func (eb *eventBus) EmitStepCompleted(workflow, requestID, stepType string, index int, duration time.Duration) {
	eb.Emit(models.EventStepCompleted, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
		"step_type":  stepType,
		"index":      index,
		"duration":   duration,
	})
}

// EmitStepError emits a step error event
func (eb *eventBus) EmitStepError(workflow, requestID, stepType string, index int, err error) {
	eb.Emit(models.EventStepError, map[string]interface{}{
		"workflow":   workflow,
		"request_id": requestID,
		"step_type":  stepType,
		"index":      index,
		"error":      err.Error(),
	})
}
