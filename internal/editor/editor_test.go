package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kuitang/editor-steps/internal/errs"
	"github.com/kuitang/editor-steps/internal/obs"
)

// =============================================================================
// Fakes for the Session and FieldLocator capabilities
// =============================================================================

type fakeInstance struct {
	status     string
	content    string
	readyAfter time.Duration // becomes ready this long after WaitFor starts
	commands   map[string]any
}

type fakeSession struct {
	mu        sync.Mutex
	instances map[string]*fakeInstance
	order     []string
	evalErr   error
	waits     int
}

func newFakeSession() *fakeSession {
	return &fakeSession{instances: make(map[string]*fakeInstance)}
}

func (s *fakeSession) register(id string, inst *fakeInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst.commands == nil {
		inst.commands = make(map[string]any)
	}
	s.instances[id] = inst
	s.order = append(s.order, id)
}

func (s *fakeSession) Evaluate(_ context.Context, fn string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evalErr != nil {
		return nil, s.evalErr
	}
	switch fn {
	case ScriptInstanceIDs:
		ids := make([]any, 0, len(s.order))
		for _, id := range s.order {
			ids = append(ids, id)
		}
		return ids, nil
	case ScriptGetData:
		inst, ok := s.instances[args[0].(string)]
		if !ok {
			return nil, fmt.Errorf("no instance %q", args[0])
		}
		return inst.content, nil
	case ScriptExecCommand:
		inst, ok := s.instances[args[0].(string)]
		if !ok {
			return nil, fmt.Errorf("no instance %q", args[0])
		}
		name := args[1].(string)
		result, ok := inst.commands[name]
		if !ok {
			return nil, fmt.Errorf("unknown command %q", name)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unexpected script: %s", fn)
	}
}

func (s *fakeSession) Execute(_ context.Context, fn string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evalErr != nil {
		return s.evalErr
	}
	if fn != ScriptInsertHTML {
		return fmt.Errorf("unexpected script: %s", fn)
	}
	inst, ok := s.instances[args[0].(string)]
	if !ok {
		return fmt.Errorf("no instance %q", args[0])
	}
	inst.content = args[1].(string)
	return nil
}

func (s *fakeSession) WaitFor(_ context.Context, fn string, timeout time.Duration, args ...any) error {
	s.mu.Lock()
	s.waits++
	if fn != ScriptInstanceReady {
		s.mu.Unlock()
		return fmt.Errorf("unexpected wait script: %s", fn)
	}
	inst, ok := s.instances[args[0].(string)]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("condition not met within %s", timeout)
	}
	if inst.status == "ready" {
		return nil
	}
	if inst.readyAfter > 0 && inst.readyAfter <= timeout {
		time.Sleep(inst.readyAfter)
		s.mu.Lock()
		inst.status = "ready"
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("condition not met within %s", timeout)
}

type fakeElement struct {
	attrs map[string]string
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, error) {
	return e.attrs[name], nil
}

type fakeLocator struct {
	fields map[string]*fakeElement
}

func (l *fakeLocator) Field(_ context.Context, name string) (Element, error) {
	el, ok := l.fields[name]
	if !ok {
		return nil, errors.New("form field not found")
	}
	return el, nil
}

func newTestAdapter(s *fakeSession, l *fakeLocator, opts ...Option) *Adapter {
	if l == nil {
		l = &fakeLocator{fields: map[string]*fakeElement{}}
	}
	return New(s, l, opts...)
}

// =============================================================================
// Resolution
// =============================================================================

func TestResolveField_UsesElementID(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	locator := &fakeLocator{fields: map[string]*fakeElement{
		"Body": {attrs: map[string]string{"id": "edit-body"}},
	}}
	adapter := newTestAdapter(session, locator)

	ref, err := adapter.ResolveField(context.Background(), "Body")
	if err != nil {
		t.Fatalf("ResolveField failed: %v", err)
	}
	if ref.ID != "edit-body" {
		t.Fatalf("ref.ID = %q, want %q", ref.ID, "edit-body")
	}
}

func TestResolveField_MissingFieldIsElementNotFound(t *testing.T) {
	t.Parallel()
	adapter := newTestAdapter(newFakeSession(), nil)

	_, err := adapter.ResolveField(context.Background(), "Missing")
	if !errs.IsCode(err, errs.ElementNotFound) {
		t.Fatalf("expected element_not_found, got %v (%s)", err, errs.CodeOf(err))
	}
}

func TestResolve_EmptyRegistryFailsImmediately(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	adapter := newTestAdapter(session, nil)

	start := time.Now()
	_, err := adapter.Resolve(context.Background(), "")
	if !errs.IsCode(err, errs.NoEditorInstance) {
		t.Fatalf("expected no_editor_instance, got %v (%s)", err, errs.CodeOf(err))
	}
	if session.waits != 0 {
		t.Fatalf("resolve attempted a readiness wait on an empty registry (%d waits)", session.waits)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("empty-registry failure took %s, expected immediate", elapsed)
	}
}

func TestResolve_DefaultInstanceIsFirstRegistered(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-summary", &fakeInstance{status: "ready"})
	session.register("edit-body", &fakeInstance{status: "ready"})
	adapter := newTestAdapter(session, nil)

	ref, err := adapter.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ref.ID != "edit-summary" {
		t.Fatalf("default instance = %q, want first registered %q", ref.ID, "edit-summary")
	}
}

func TestResolve_NeverReadyIsEditorNotReady(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "loading"})
	adapter := newTestAdapter(session, nil, WithReadyTimeout(50*time.Millisecond))

	_, err := adapter.Resolve(context.Background(), "edit-body")
	if !errs.IsCode(err, errs.EditorNotReady) {
		t.Fatalf("expected editor_not_ready, got %v (%s)", err, errs.CodeOf(err))
	}
}

func TestResolve_ReadyBeforeTimeoutDoesNotBlockFullTimeout(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "loading", readyAfter: 20 * time.Millisecond})
	adapter := newTestAdapter(session, nil) // default 10s timeout

	start := time.Now()
	ref, err := adapter.Resolve(context.Background(), "edit-body")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ref.ID != "edit-body" {
		t.Fatalf("ref.ID = %q", ref.ID)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("resolution blocked %s after instance became ready", elapsed)
	}
}

// =============================================================================
// Content assertions
// =============================================================================

func TestContains_SubstringSemantics(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: "<p>Hello</p>"})
	adapter := newTestAdapter(session, nil)
	ctx := context.Background()

	if err := adapter.Contains(ctx, "Hello", ""); err != nil {
		t.Fatalf("Contains(Hello) failed: %v", err)
	}

	err := adapter.Contains(ctx, "Goodbye", "")
	if !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("expected content_mismatch, got %v (%s)", err, errs.CodeOf(err))
	}
	// The failure names the id argument as given: empty for the default
	// instance, plus the expected text.
	msg := err.Error()
	if !strings.Contains(msg, `""`) || !strings.Contains(msg, `"Goodbye"`) {
		t.Fatalf("mismatch message %q should reference id \"\" and text \"Goodbye\"", msg)
	}
}

func TestContains_IsCaseSensitive(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: "<p>Hello</p>"})
	adapter := newTestAdapter(session, nil)

	err := adapter.Contains(context.Background(), "hello", "edit-body")
	if !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("expected case-sensitive mismatch, got %v", err)
	}
}

func TestMatches_RegexSemantics(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: "<p>Item 42</p>"})
	adapter := newTestAdapter(session, nil)
	ctx := context.Background()

	if err := adapter.Matches(ctx, `Item \d+`, "edit-body"); err != nil {
		t.Fatalf("Matches failed: %v", err)
	}
	err := adapter.Matches(ctx, `Item [a-z]+`, "edit-body")
	if !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("expected content_mismatch, got %v", err)
	}
	err = adapter.Matches(ctx, `(`, "edit-body")
	if !errs.IsCode(err, errs.InvalidArgument) {
		t.Fatalf("expected invalid_argument for bad pattern, got %v", err)
	}
}

func testContains_AgreesWithStringsContains(t *rapid.T) {
	content := rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "content")
	probe := rapid.StringMatching(`[ -~]{0,8}`).Draw(t, "probe")

	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: content})
	adapter := newTestAdapter(session, nil)

	err := adapter.Contains(context.Background(), probe, "edit-body")
	if strings.Contains(content, probe) {
		if err != nil {
			t.Fatalf("Contains(%q in %q) failed: %v", probe, content, err)
		}
	} else if !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("Contains(%q in %q) = %v, want content_mismatch", probe, content, err)
	}
}

func TestContains_AgreesWithStringsContains(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testContains_AgreesWithStringsContains)
}

func testMatches_AgreesWithRegexp(t *rapid.T) {
	content := rapid.StringMatching(`[a-z0-9 ]{0,40}`).Draw(t, "content")
	pattern := rapid.SampledFrom([]string{`\d+`, `[a-m]{2,}`, `^$`, `o.o`, `z{3}`}).Draw(t, "pattern")

	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: content})
	adapter := newTestAdapter(session, nil)

	err := adapter.Matches(context.Background(), pattern, "edit-body")
	matched := mustMatch(t, pattern, content)
	if matched && err != nil {
		t.Fatalf("Matches(%q on %q) failed: %v", pattern, content, err)
	}
	if !matched && !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("Matches(%q on %q) = %v, want content_mismatch", pattern, content, err)
	}
}

func mustMatch(t *rapid.T, pattern, content string) bool {
	matched, err := regexpMatch(pattern, content)
	if err != nil {
		t.Fatalf("test pattern %q failed to compile: %v", pattern, err)
	}
	return matched
}

func regexpMatch(pattern, content string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(content), nil
}

func TestMatches_AgreesWithRegexp(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testMatches_AgreesWithRegexp)
}

// =============================================================================
// Content insertion
// =============================================================================

func TestInsertContent_ByFieldName(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	locator := &fakeLocator{fields: map[string]*fakeElement{
		"Body": {attrs: map[string]string{"id": "edit-body"}},
	}}
	adapter := newTestAdapter(session, locator)

	if err := adapter.InsertContent(context.Background(), "<p>Typed</p>", "Body"); err != nil {
		t.Fatalf("InsertContent failed: %v", err)
	}
	if err := adapter.Contains(context.Background(), "Typed", "edit-body"); err != nil {
		t.Fatalf("inserted content not visible: %v", err)
	}
}

func TestInsertContent_DefaultInstance(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	adapter := newTestAdapter(session, nil)

	// Quotes and backslashes travel as structured arguments, so they
	// cannot break the script expression.
	hostile := `He said "hi" \ 'bye' </script>`
	if err := adapter.InsertContent(context.Background(), hostile, ""); err != nil {
		t.Fatalf("InsertContent failed: %v", err)
	}
	if err := adapter.Contains(context.Background(), hostile, ""); err != nil {
		t.Fatalf("hostile content mangled in transport: %v", err)
	}
}

// =============================================================================
// Command execution
// =============================================================================

func TestExecCommand_TruthyAndFalsyResults(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{
		status: "ready",
		commands: map[string]any{
			"bold":        true,
			"selectAll":   float64(1),
			"name":        "bold",
			"zero":        float64(0),
			"emptyString": "",
			"falseCmd":    false,
			"nullCmd":     nil,
		},
	})
	adapter := newTestAdapter(session, nil)
	ctx := context.Background()

	for _, cmd := range []string{"bold", "selectAll", "name"} {
		if err := adapter.ExecCommand(ctx, cmd, "edit-body", nil); err != nil {
			t.Errorf("ExecCommand(%q) failed: %v", cmd, err)
		}
	}
	for _, cmd := range []string{"zero", "emptyString", "falseCmd", "nullCmd"} {
		err := adapter.ExecCommand(ctx, cmd, "edit-body", nil)
		if !errs.IsCode(err, errs.CommandFailed) {
			t.Errorf("ExecCommand(%q) = %v, want command_failed", cmd, err)
		}
	}
}

func TestExecCommand_UnknownCommandSurfacesFailure(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	adapter := newTestAdapter(session, nil)

	err := adapter.ExecCommand(context.Background(), "explode", "edit-body", nil)
	if !errs.IsCode(err, errs.CommandFailed) {
		t.Fatalf("expected command_failed, got %v", err)
	}
	if !strings.Contains(err.Error(), "explode") {
		t.Fatalf("failure message %q should name the command", err.Error())
	}
}

// =============================================================================
// End-to-end scenarios from the step library's contract
// =============================================================================

func TestScenario_SingleReadyInstanceDefaultAssertions(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready", content: "<p>Hello</p>"})
	adapter := newTestAdapter(session, nil)
	ctx := context.Background()

	if err := adapter.Contains(ctx, "Hello", ""); err != nil {
		t.Fatalf("Contains(Hello) on default instance failed: %v", err)
	}
	err := adapter.Contains(ctx, "Goodbye", "")
	if !errs.IsCode(err, errs.ContentMismatch) {
		t.Fatalf("Contains(Goodbye) = %v, want content_mismatch", err)
	}
}

func TestScenario_SessionFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	session.evalErr = errors.New("browser gone")
	adapter := newTestAdapter(session, nil)

	err := adapter.Contains(context.Background(), "x", "edit-body")
	if !errs.IsCode(err, errs.Unavailable) {
		t.Fatalf("expected unavailable, got %v (%s)", err, errs.CodeOf(err))
	}
}

// Not parallel: swaps the global logger output.
func TestOperationLogs_CarryEditorAndScenarioIDs(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutputForTests(&buf)
	defer restore()

	session := newFakeSession()
	session.register("edit-body", &fakeInstance{status: "ready"})
	adapter := newTestAdapter(session, nil)

	ctx := obs.WithScenarioID(context.Background(), "scn-42")
	if err := adapter.InsertContent(ctx, "<p>Hi</p>", ""); err != nil {
		t.Fatalf("InsertContent failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"editor_id":"edit-body"`) {
		t.Fatalf("log output missing editor_id: %s", out)
	}
	if !strings.Contains(out, `"scenario_id":"scn-42"`) {
		t.Fatalf("log output missing scenario_id: %s", out)
	}
}
