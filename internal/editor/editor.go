// Package editor drives rich-text editor widgets inside a live browser
// session for tests. It translates test intents ("put text into the
// editor", "the editor should contain X") into structured script calls
// against an injected Session and interprets the returned values as
// pass/fail assertions.
//
// The package owns no browser state: editor instances, their readiness and
// their content all live behind the Session capability, and every
// operation is a self-contained synchronous sequence of
// resolve -> (optional wait) -> evaluate -> interpret.
package editor

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/kuitang/editor-steps/internal/errs"
	"github.com/kuitang/editor-steps/internal/logutil"
	"github.com/kuitang/editor-steps/internal/obs"
)

// DefaultReadyTimeout bounds the readiness wait inside resolution.
const DefaultReadyTimeout = 10 * time.Second

// Session evaluates scripts inside a live browser page.
type Session interface {
	// Evaluate runs the script function with args and returns its
	// JSON-decoded result.
	Evaluate(ctx context.Context, fn string, args ...any) (any, error)
	// Execute runs the script function with args, discarding any result.
	Execute(ctx context.Context, fn string, args ...any) error
	// WaitFor blocks until the script function returns a truthy value or
	// the timeout elapses, in which case it returns an error.
	WaitFor(ctx context.Context, fn string, timeout time.Duration, args ...any) error
}

// Element is a handle to a located page element.
type Element interface {
	Attribute(ctx context.Context, name string) (string, error)
}

// FieldLocator resolves human field names to page elements.
type FieldLocator interface {
	// Field returns the element for the named field, or an error when no
	// such field exists on the current page.
	Field(ctx context.Context, name string) (Element, error)
}

// Reference identifies one resolved editor instance. It is valid only
// within the Session that produced it and is computed fresh on every
// operation, never cached across steps.
type Reference struct {
	ID string
}

// Adapter is the editor test adapter.
type Adapter struct {
	session      Session
	fields       FieldLocator
	readyTimeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithReadyTimeout overrides the readiness wait timeout.
func WithReadyTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.readyTimeout = d
		}
	}
}

// New creates an adapter over the given session and field locator.
func New(session Session, fields FieldLocator, opts ...Option) *Adapter {
	a := &Adapter{
		session:      session,
		fields:       fields,
		readyTimeout: DefaultReadyTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ResolveField locates the named field, reads its id attribute, and waits
// for the corresponding editor instance to become ready.
func (a *Adapter) ResolveField(ctx context.Context, field string) (Reference, error) {
	el, err := a.fields.Field(ctx, field)
	if err != nil {
		return Reference{}, errs.Wrap(errs.ElementNotFound,
			"field \""+field+"\" not found on the current page", err)
	}
	id, err := el.Attribute(ctx, "id")
	if err != nil {
		return Reference{}, errs.Wrap(errs.Internal,
			"read id attribute of field \""+field+"\"", err)
	}
	if id == "" {
		return Reference{}, errs.Newf(errs.ElementNotFound,
			"field %q has no id attribute", field)
	}
	if err := a.waitReady(ctx, id); err != nil {
		return Reference{}, err
	}
	a.logger(ctx, id).Debug("editor_resolved", "field", field)
	return Reference{ID: id}, nil
}

// Resolve resolves an editor by raw instance id. An empty id selects the
// first entry of the live instance registry snapshot; when the registry is
// empty it fails immediately, before any readiness wait.
func (a *Adapter) Resolve(ctx context.Context, id string) (Reference, error) {
	resolved := id
	if resolved == "" {
		ids, err := a.instanceIDs(ctx)
		if err != nil {
			return Reference{}, err
		}
		if len(ids) == 0 {
			return Reference{}, errs.New(errs.NoEditorInstance,
				"no editor instance registered on the current page")
		}
		resolved = ids[0]
	}
	if err := a.waitReady(ctx, resolved); err != nil {
		return Reference{}, err
	}
	return Reference{ID: resolved}, nil
}

// InsertContent resolves the editor (by field name when given, default
// instance otherwise) and inserts the text as its content. The text is
// passed as a structured argument, never interpolated into script source.
func (a *Adapter) InsertContent(ctx context.Context, text, field string) error {
	var (
		ref Reference
		err error
	)
	if field != "" {
		ref, err = a.ResolveField(ctx, field)
	} else {
		ref, err = a.Resolve(ctx, "")
	}
	if err != nil {
		return err
	}
	if err := a.session.Execute(ctx, ScriptInsertHTML, ref.ID, text); err != nil {
		return errs.Wrap(errs.Unavailable,
			"insert content into editor \""+ref.ID+"\"", err)
	}
	a.logger(ctx, ref.ID).Debug("content_inserted",
		"text", logutil.TruncateForLog(text),
	)
	return nil
}

// Contains asserts that the editor content includes text as a literal,
// case-sensitive substring. The failure message names the id argument as
// given, so the default instance reports an empty id.
func (a *Adapter) Contains(ctx context.Context, text, id string) error {
	ref, err := a.Resolve(ctx, id)
	if err != nil {
		return err
	}
	content, err := a.content(ctx, ref)
	if err != nil {
		return err
	}
	if !strings.Contains(content, text) {
		return errs.Newf(errs.ContentMismatch,
			"editor %q does not contain %q", id, text)
	}
	return nil
}

// Matches asserts that the editor content matches the regular expression.
// The pattern is passed to the regexp engine verbatim.
func (a *Adapter) Matches(ctx context.Context, pattern, id string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument,
			"invalid content pattern \""+pattern+"\"", err)
	}
	ref, err := a.Resolve(ctx, id)
	if err != nil {
		return err
	}
	content, err := a.content(ctx, ref)
	if err != nil {
		return err
	}
	if !re.MatchString(content) {
		return errs.Newf(errs.ContentMismatch,
			"editor %q content does not match %q", id, pattern)
	}
	return nil
}

// ExecCommand resolves the editor and invokes the named command. The
// decoded result is a success signal: any falsy value (absent, empty,
// zero, false) fails with the command name and the value for diagnostics.
func (a *Adapter) ExecCommand(ctx context.Context, command, id string, data any) error {
	ref, err := a.Resolve(ctx, id)
	if err != nil {
		return err
	}
	result, err := a.session.Evaluate(ctx, ScriptExecCommand, ref.ID, command, data)
	if err != nil {
		return errs.Wrap(errs.CommandFailed,
			"command \""+command+"\" failed in editor \""+ref.ID+"\"", err)
	}
	if !truthy(result) {
		return errs.Newf(errs.CommandFailed,
			"command %q returned falsy result %v", command, result)
	}
	a.logger(ctx, ref.ID).Debug("command_executed", "command", command)
	return nil
}

// content reads the editor's serialized content. Internal to the
// assertion operations; never exposed as an independent test step.
func (a *Adapter) content(ctx context.Context, ref Reference) (string, error) {
	v, err := a.session.Evaluate(ctx, ScriptGetData, ref.ID)
	if err != nil {
		return "", errs.Wrap(errs.Unavailable,
			"read content of editor \""+ref.ID+"\"", err)
	}
	s, _ := v.(string)
	return s, nil
}

func (a *Adapter) instanceIDs(ctx context.Context) ([]string, error) {
	v, err := a.session.Evaluate(ctx, ScriptInstanceIDs)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "list editor instances", err)
	}
	raw, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]string); ok {
			return typed, nil
		}
		return nil, nil
	}
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// logger returns a package logger stamped with the editor id plus any
// request/scenario correlation already in ctx.
func (a *Adapter) logger(ctx context.Context, id string) *slog.Logger {
	return obs.From(obs.WithEditorID(ctx, id)).With("pkg", "editor")
}

func (a *Adapter) waitReady(ctx context.Context, id string) error {
	if err := a.session.WaitFor(ctx, ScriptInstanceReady, a.readyTimeout, id); err != nil {
		return errs.Wrap(errs.EditorNotReady,
			"editor \""+id+"\" did not become ready within "+a.readyTimeout.String(), err)
	}
	return nil
}

// truthy mirrors JavaScript truthiness for decoded script results. A
// falsy command result is treated as failure even when the command
// legitimately returns 0 or false on success.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case uint64:
		return x != 0
	default:
		return true
	}
}
