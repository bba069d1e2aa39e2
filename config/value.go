package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/simon020286/go-workflow/models"
)

// Scope is the per-request data visible to dynamic values
type Scope struct {
	RequestID string
	Request   map[string]any
	Variables map[string]any
	Secrets   map[string]any

	ctx context.Context
}

// NewScope builds the scope of a request from its context and the
// workflow globals carried by ctx
func NewScope(ctx context.Context, rc models.RequestContext) *Scope {
	globals := models.GlobalsFromContext(ctx)
	return &Scope{
		RequestID: rc.RequestID(),
		Request:   rc.Metadata(),
		Variables: globals.Variables,
		Secrets:   globals.Secrets,
		ctx:       ctx,
	}
}

// NewRuntime creates a goja runtime with the scope bound to ctx, $vars and $secrets.
// $vars and $secrets are copies: scripts may change them without affecting
// the workflow globals or other requests.
func (s *Scope) NewRuntime() (*goja.Runtime, error) {
	runtime := goja.New()

	jsCtx := map[string]any{
		"request":    s.Request,
		"request_id": s.RequestID,
	}
	if err := runtime.Set("ctx", jsCtx); err != nil {
		return nil, fmt.Errorf("failed to set context: %w", err)
	}

	if s.Variables != nil {
		if err := runtime.Set("$vars", deepCopy(s.Variables)); err != nil {
			return nil, fmt.Errorf("failed to set global variables: %w", err)
		}
	}

	if s.Secrets != nil {
		if err := runtime.Set("$secrets", deepCopy(s.Secrets)); err != nil {
			return nil, fmt.Errorf("failed to set global secrets: %w", err)
		}
	}

	return runtime, nil
}

// Watch interrupts runtime when the request context is done.
// The returned function stops watching.
func (s *Scope) Watch(runtime *goja.Runtime) (stop func() bool) {
	if s.ctx == nil {
		return func() bool { return false }
	}
	ctx := s.ctx
	return context.AfterFunc(ctx, func() {
		runtime.Interrupt(ctx.Err())
	})
}

// Interrupted maps a goja interruption caused by the request context to
// the context error
func (s *Scope) Interrupted(err error) error {
	var interrupted *goja.InterruptedError
	if s.ctx != nil && errors.As(err, &interrupted) && s.ctx.Err() != nil {
		return s.ctx.Err()
	}
	return nil
}

func deepCopy[T any](v T) T {
	copied, _ := copyValue(v).(T)
	return copied
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return val
		}
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = copyValue(item)
		}
		return m
	case []any:
		if val == nil {
			return val
		}
		l := make([]any, len(val))
		for i, item := range val {
			l[i] = copyValue(item)
		}
		return l
	default:
		return v
	}
}

// ValueSpec represents a value that can be static or dynamic
type ValueSpec interface {
	IsStatic() bool
	GetStaticValue() (any, bool)
	GetDynamicExpression() (DynamicValue, bool)
	// Resolve resolves the value against the request scope
	Resolve(scope *Scope) (any, error)
}

// ParseValue converts a raw configuration value into a ValueSpec.
// Strings prefixed with $js:, $var:, $secret: or $env: become dynamic.
func ParseValue(v any) ValueSpec {
	if vs, ok := v.(ValueSpec); ok {
		return vs
	}

	str, ok := v.(string)
	if !ok {
		return StaticValue{Value: v}
	}

	switch {
	case strings.HasPrefix(str, "$js:"):
		return DynamicValue{
			Language:   "js",
			Expression: strings.TrimSpace(strings.TrimPrefix(str, "$js:")),
		}
	case strings.HasPrefix(str, "$var:"):
		return VariableReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$var:"))}
	case strings.HasPrefix(str, "$secret:"):
		return SecretReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$secret:"))}
	case strings.HasPrefix(str, "$env:"):
		return EnvReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$env:"))}
	}

	return StaticValue{Value: v}
}

// StaticValue represents a literal value (number, string, bool, etc.)
type StaticValue struct {
	Value any
}

func NewStaticValue(value any) StaticValue {
	return StaticValue{
		Value: value,
	}
}

func (s StaticValue) IsStatic() bool {
	return true
}

func (s StaticValue) GetStaticValue() (any, bool) {
	return s.Value, true
}

func (s StaticValue) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (s StaticValue) Resolve(_ *Scope) (any, error) {
	return s.Value, nil
}

// DynamicValue represents an expression to be evaluated at runtime
type DynamicValue struct {
	Language   string // only "js" is supported
	Expression string
}

func (d DynamicValue) IsStatic() bool {
	return false
}

func (d DynamicValue) GetStaticValue() (any, bool) {
	return nil, false
}

func (d DynamicValue) GetDynamicExpression() (DynamicValue, bool) {
	return d, true
}

func (d DynamicValue) Resolve(scope *Scope) (any, error) {
	switch d.Language {
	case "js", "javascript", "":
		return d.resolveJS(scope)
	default:
		return nil, fmt.Errorf("unsupported language: %s", d.Language)
	}
}

// resolveJS evaluates a JavaScript expression using Goja
func (d DynamicValue) resolveJS(scope *Scope) (any, error) {
	runtime, err := scope.NewRuntime()
	if err != nil {
		return nil, err
	}

	stop := scope.Watch(runtime)
	defer stop()

	wrappedCode := "(function() {\n return " + d.Expression + "\n})()"

	result, err := runtime.RunString(wrappedCode)
	if err != nil {
		if ctxErr := scope.Interrupted(err); ctxErr != nil {
			return nil, fmt.Errorf("JS expression '%s' interrupted: %w", d.Expression, ctxErr)
		}
		return nil, fmt.Errorf("failed to execute JS expression '%s': %w", d.Expression, err)
	}

	return result.Export(), nil
}

// VariableReference represents a reference to a global workflow variable ($var:name)
type VariableReference struct {
	Name string
}

func (v VariableReference) IsStatic() bool {
	return false
}

func (v VariableReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (v VariableReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (v VariableReference) Resolve(scope *Scope) (any, error) {
	if scope.Variables == nil {
		return nil, fmt.Errorf("variable '%s' not found: no global variables defined", v.Name)
	}

	value, exists := scope.Variables[v.Name]
	if !exists {
		return nil, fmt.Errorf("variable '%s' not found in global variables", v.Name)
	}

	return value, nil
}

// SecretReference represents a reference to a global workflow secret ($secret:name)
type SecretReference struct {
	Name string
}

func (s SecretReference) IsStatic() bool {
	return false
}

func (s SecretReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (s SecretReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (s SecretReference) Resolve(scope *Scope) (any, error) {
	if scope.Secrets == nil {
		return nil, fmt.Errorf("secret '%s' not found: no global secrets defined", s.Name)
	}

	value, exists := scope.Secrets[s.Name]
	if !exists {
		return nil, fmt.Errorf("secret '%s' not found in global secrets", s.Name)
	}

	return value, nil
}

// String returns a masked representation of the secret for logging
func (s SecretReference) String() string {
	return fmt.Sprintf("$secret:%s=***", s.Name)
}

// EnvReference represents a reference to an environment variable ($env:NAME)
type EnvReference struct {
	Name string
}

func (e EnvReference) IsStatic() bool {
	return false
}

func (e EnvReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (e EnvReference) GetDynamicExpression() (DynamicValue, bool) {
	return DynamicValue{}, false
}

func (e EnvReference) Resolve(_ *Scope) (any, error) {
	value := os.Getenv(e.Name)
	if value == "" {
		return nil, fmt.Errorf("environment variable '%s' is not set or is empty", e.Name)
	}

	return value, nil
}
