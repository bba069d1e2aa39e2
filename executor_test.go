package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/simon020286/go-workflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor() *Executor {
	return NewExecutor(zerolog.Nop())
}

// eventRecorder collects event types in delivery order
type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) OnEvent(event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func TestRun_EndToEnd(t *testing.T) {
	reg, err := NewBuilder("hello").Start("start").Then("then").End()
	require.NoError(t, err)

	rc := models.NewBufferContext(nil)
	err = newTestExecutor().Run(context.Background(), reg, rc, WriteTerminal("End Point"))

	require.NoError(t, err)
	assert.Equal(t, "Starting workflow...\nThen workflow...\nEnd Point", rc.String())
}

func TestRun_Order(t *testing.T) {
	reg, err := NewBuilder("order").
		StartStep("a", writeStep("A\n")).
		ThenStep("b", writeStep("B\n")).
		ThenStep("c", writeStep("C\n")).
		End()
	require.NoError(t, err)

	rc := models.NewBufferContext(nil)
	require.NoError(t, newTestExecutor().Run(context.Background(), reg, rc, WriteTerminal("T")))

	assert.Equal(t, "A\nB\nC\nT", rc.String())
}

func TestRun_NilTerminal(t *testing.T) {
	reg, err := NewBuilder("no-terminal").StartStep("a", writeStep("A")).End()
	require.NoError(t, err)

	rc := models.NewBufferContext(nil)
	require.NoError(t, newTestExecutor().Run(context.Background(), reg, rc, nil))
	assert.Equal(t, "A", rc.String())
}

func TestRun_ConcurrentIsolation(t *testing.T) {
	// each step writes the request ID it sees, so any cross-talk shows up
	idStep := func(label string) models.StepFactory {
		return func() models.Step {
			return models.StepFunc(func(_ context.Context, rc models.RequestContext) error {
				time.Sleep(time.Millisecond)
				_, err := rc.WriteString(label + ":" + rc.RequestID() + "\n")
				return err
			})
		}
	}

	reg, err := NewBuilder("isolation").
		StartStep("a", idStep("A")).
		ThenStep("b", idStep("B")).
		ThenStep("c", idStep("C")).
		End()
	require.NoError(t, err)

	exec := newTestExecutor()
	const runs = 50

	contexts := make([]*models.BufferContext, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		contexts[i] = models.NewBufferContext(nil)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = exec.Run(context.Background(), reg, contexts[i], WriteTerminal("T"))
		}(i)
	}
	wg.Wait()

	for i, rc := range contexts {
		require.NoError(t, errs[i])
		id := rc.RequestID()
		expected := fmt.Sprintf("A:%s\nB:%s\nC:%s\nT", id, id, id)
		assert.Equal(t, expected, rc.String())
	}
}

// statefulStep fails if it is executed more than once
type statefulStep struct {
	executed bool
	seen     *sync.Map
}

func (s *statefulStep) Execute(_ context.Context, rc models.RequestContext) error {
	if s.executed {
		return errors.New("instance reused")
	}
	s.executed = true
	s.seen.Store(s, rc.RequestID())
	return nil
}

func TestRun_FreshInstancePerRequest(t *testing.T) {
	var constructed atomic.Int32
	seen := &sync.Map{}
	factory := func() models.Step {
		constructed.Add(1)
		return &statefulStep{seen: seen}
	}

	reg, err := NewBuilder("fresh").StartStep("stateful", factory).ThenStep("stateful", factory).End()
	require.NoError(t, err)
	assert.Zero(t, constructed.Load(), "no instance should be built before a request")

	exec := newTestExecutor()
	require.NoError(t, exec.Run(context.Background(), reg, models.NewBufferContext(nil), nil))
	require.NoError(t, exec.Run(context.Background(), reg, models.NewBufferContext(nil), nil))

	assert.Equal(t, int32(4), constructed.Load())

	instances := 0
	seen.Range(func(_, _ any) bool {
		instances++
		return true
	})
	assert.Equal(t, 4, instances)
}

func TestRun_ShortCircuitOnFailure(t *testing.T) {
	errBoom := errors.New("boom")
	cCalled := false

	reg, err := NewBuilder("short").
		StartStep("a", writeStep("A\n")).
		ThenStep("b", func() models.Step {
			return models.StepFunc(func(context.Context, models.RequestContext) error {
				return errBoom
			})
		}).
		ThenStep("c", func() models.Step {
			cCalled = true
			return models.StepFunc(func(_ context.Context, rc models.RequestContext) error {
				_, err := rc.WriteString("C\n")
				return err
			})
		}).
		End()
	require.NoError(t, err)

	terminalCalled := false
	terminal := func(_ context.Context, rc models.RequestContext) error {
		terminalCalled = true
		_, err := rc.WriteString("T")
		return err
	}

	rc := models.NewBufferContext(nil)
	err = newTestExecutor().Run(context.Background(), reg, rc, terminal)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var execErr *models.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "short", execErr.Workflow)
	assert.Equal(t, "b", execErr.StepType)
	assert.Equal(t, 1, execErr.Index)

	assert.Equal(t, "A\n", rc.String())
	assert.False(t, cCalled, "steps after a failure must not be constructed")
	assert.False(t, terminalCalled)
}

func TestRun_NilStepFromFactory(t *testing.T) {
	reg, err := NewBuilder("nil-step").StartStep("nil", func() models.Step { return nil }).End()
	require.NoError(t, err)

	err = newTestExecutor().Run(context.Background(), reg, models.NewBufferContext(nil), nil)

	var execErr *models.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "nil", execErr.StepType)
}

func TestRun_TerminalFailure(t *testing.T) {
	errTerminal := errors.New("endpoint failed")
	reg, err := NewBuilder("terminal").Start("start").End()
	require.NoError(t, err)

	err = newTestExecutor().Run(context.Background(), reg, models.NewBufferContext(nil),
		func(context.Context, models.RequestContext) error { return errTerminal })

	assert.ErrorIs(t, err, errTerminal)
	assert.ErrorContains(t, err, "terminal handler failed")
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	reg, err := NewBuilder("cancelled").Start("start").Then("then").End()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := models.NewBufferContext(nil)
	err = newTestExecutor().Run(ctx, reg, rc, WriteTerminal("End Point"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rc.String())
}

func TestRun_CancelledDuringStep(t *testing.T) {
	reg, err := NewBuilder("slow").
		Start("start").
		ThenWith("delay", map[string]any{"ms": 60000}).
		Then("then").
		End()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rc := models.NewBufferContext(nil)
	err = newTestExecutor().Run(ctx, reg, rc, WriteTerminal("End Point"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var execErr *models.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "delay", execErr.StepType)
	assert.Equal(t, "Starting workflow...\n", rc.String())
}

func TestRun_InvalidArguments(t *testing.T) {
	exec := newTestExecutor()
	reg, err := NewBuilder("args").Start("start").End()
	require.NoError(t, err)

	assert.Error(t, exec.Run(context.Background(), nil, models.NewBufferContext(nil), nil))
	assert.Error(t, exec.Run(context.Background(), reg, nil, nil))
}

func TestRun_GlobalsVisibleToSteps(t *testing.T) {
	reg, err := NewBuilder("globals").
		WithVariables(map[string]any{"name": "world"}).
		WithSecrets(map[string]any{"token": "abc"}).
		StartWith("text", map[string]any{"text": "$js: 'hello ' + $vars.name + ' ' + $secrets.token.length"}).
		End()
	require.NoError(t, err)

	rc := models.NewBufferContext(nil)
	require.NoError(t, newTestExecutor().Run(context.Background(), reg, rc, nil))
	assert.Equal(t, "hello world 3\n", rc.String())
}

func TestRun_ScriptsCannotChangeGlobals(t *testing.T) {
	reg, err := NewBuilder("counter").
		WithVariables(map[string]any{"count": 0}).
		StartWith("text", map[string]any{"text": "$js: ($vars.count = $vars.count + 1)"}).
		ThenWith("js", map[string]any{"code": "$vars.count = 100; return $vars.count;"}).
		End()
	require.NoError(t, err)

	exec := newTestExecutor()
	for i := 0; i < 3; i++ {
		rc := models.NewBufferContext(nil)
		require.NoError(t, exec.Run(context.Background(), reg, rc, nil))
		assert.Equal(t, "1\n100\n", rc.String())
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc := models.NewBufferContext(nil)
			assert.NoError(t, exec.Run(context.Background(), reg, rc, nil))
			assert.Equal(t, "1\n100\n", rc.String())
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Globals().Variables["count"])
}

func TestRun_LoggerAttachedToContext(t *testing.T) {
	var buf bytes.Buffer
	exec := NewExecutor(zerolog.New(&buf))

	reg, err := NewBuilder("logged").Start("start").End()
	require.NoError(t, err)

	rc := models.NewBufferContext(nil)
	require.NoError(t, exec.Run(context.Background(), reg, rc, nil))

	assert.Contains(t, buf.String(), `"workflow":"logged"`)
	assert.Contains(t, buf.String(), `"request_id":"`+rc.RequestID()+`"`)
	assert.Contains(t, buf.String(), "Starting workflow...")
}

func TestRun_Events(t *testing.T) {
	exec := newTestExecutor()
	recorder := &eventRecorder{}
	exec.AddListener(recorder)

	reg, err := NewBuilder("events").Start("start").Then("then").End()
	require.NoError(t, err)

	require.NoError(t, exec.Run(context.Background(), reg, models.NewBufferContext(nil), nil))
	exec.Wait()

	assert.Equal(t, []models.EventType{
		models.EventWorkflowStarted,
		models.EventStepStarted,
		models.EventStepCompleted,
		models.EventStepStarted,
		models.EventStepCompleted,
		models.EventWorkflowCompleted,
	}, recorder.types())
}

func TestRun_EventsOnFailure(t *testing.T) {
	exec := newTestExecutor()
	recorder := &eventRecorder{}
	exec.AddListener(recorder)

	reg, err := NewBuilder("failing").
		StartStep("bad", func() models.Step {
			return models.StepFunc(func(context.Context, models.RequestContext) error {
				return errors.New("nope")
			})
		}).
		End()
	require.NoError(t, err)

	require.Error(t, exec.Run(context.Background(), reg, models.NewBufferContext(nil), nil))
	exec.Wait()

	assert.Equal(t, []models.EventType{
		models.EventWorkflowStarted,
		models.EventStepStarted,
		models.EventStepError,
		models.EventWorkflowError,
	}, recorder.types())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	assert.Equal(t, "bad", recorder.events[1].Data["step_type"])
	assert.Equal(t, 0, recorder.events[1].Data["index"])
}
