package models

import "fmt"

type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration key: " + e.Key
}

func ErrMissingConfig(key string) error {
	return &MissingConfigError{Key: key}
}

type InterpolateError struct {
	Key   string
	Value any
	Err   error
}

func (e *InterpolateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to interpolate value for key '%s': %v: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("failed to interpolate value for key '%s': %v", e.Key, e.Value)
}

func (e *InterpolateError) Unwrap() error {
	return e.Err
}

func ErrInterpolate(key string, value any, err error) error {
	return &InterpolateError{Key: key, Value: value, Err: err}
}

// BuilderSequenceError reports a workflow builder call made out of order
type BuilderSequenceError struct {
	Op     string
	Reason string
}

func (e *BuilderSequenceError) Error() string {
	return fmt.Sprintf("workflow builder: %s: %s", e.Op, e.Reason)
}

func ErrBuilderSequence(op, reason string) error {
	return &BuilderSequenceError{Op: op, Reason: reason}
}

type UnknownStepTypeError struct {
	StepType string
}

func (e *UnknownStepTypeError) Error() string {
	return "unknown step type: " + e.StepType
}

func ErrUnknownStepType(stepType string) error {
	return &UnknownStepTypeError{StepType: stepType}
}

// ExecutionError reports a step that could not complete.
// The remaining steps and the terminal handler were not run.
type ExecutionError struct {
	Workflow string
	StepType string
	Index    int
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("workflow '%s': step %d (%s) failed: %v", e.Workflow, e.Index, e.StepType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func ErrExecution(workflow, stepType string, index int, err error) error {
	return &ExecutionError{Workflow: workflow, StepType: stepType, Index: index, Err: err}
}
