// Package playwrightdrv implements the editor package's Session and
// FieldLocator capabilities over Playwright.
package playwrightdrv

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/logutil"
	"github.com/kuitang/editor-steps/internal/obs"
)

// Session evaluates scripts on a Playwright page. Playwright's Go binding
// is not context-aware, so the ctx parameter only carries correlation
// fields for logging; cancellation is governed by Playwright timeouts.
type Session struct {
	page playwright.Page
}

// NewSession wraps a Playwright page as an editor Session.
func NewSession(page playwright.Page) *Session {
	return &Session{page: page}
}

// Page returns the underlying Playwright page.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Evaluate runs the script function with args and returns its decoded result.
func (s *Session) Evaluate(ctx context.Context, fn string, args ...any) (any, error) {
	obs.From(ctx).With("pkg", "playwrightdrv").Debug(
		"evaluate",
		"script", logutil.FormatScriptForLog(fn),
		"args", logutil.FormatArgsForLog(args),
	)
	if len(args) == 0 {
		return s.page.Evaluate(fn)
	}
	return s.page.Evaluate(fn, args)
}

// Execute runs the script function with args, discarding the result.
func (s *Session) Execute(ctx context.Context, fn string, args ...any) error {
	_, err := s.Evaluate(ctx, fn, args...)
	return err
}

// WaitFor blocks until the script function returns a truthy value or the
// timeout elapses.
func (s *Session) WaitFor(_ context.Context, fn string, timeout time.Duration, args ...any) error {
	options := playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}
	var arg any
	if len(args) > 0 {
		arg = args
	}
	_, err := s.page.WaitForFunction(fn, arg, options)
	return err
}

// element adapts a Playwright locator to the editor.Element handle.
type element struct {
	locator playwright.Locator
}

func (e *element) Attribute(_ context.Context, name string) (string, error) {
	value, err := e.locator.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return value, nil
}

// FieldLocator resolves field names against the page: by element id,
// then form control name, then associated label text.
type FieldLocator struct {
	page playwright.Page
}

// NewFieldLocator creates a FieldLocator for the page.
func NewFieldLocator(page playwright.Page) *FieldLocator {
	return &FieldLocator{page: page}
}

// Field returns the first matching form element for the name.
func (l *FieldLocator) Field(ctx context.Context, name string) (editor.Element, error) {
	selectors := []string{
		fmt.Sprintf(`[id=%q]`, name),
		fmt.Sprintf(`textarea[name=%q], input[name=%q], select[name=%q]`, name, name, name),
	}
	for _, selector := range selectors {
		locator := l.page.Locator(selector).First()
		count, err := locator.Count()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return &element{locator: locator}, nil
		}
	}

	// Label text fallback: find the label, follow its for attribute.
	label := l.page.Locator(fmt.Sprintf(`label:text-is(%q)`, name)).First()
	count, err := label.Count()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		forID, err := label.GetAttribute("for")
		if err == nil && forID != "" {
			target := l.page.Locator(fmt.Sprintf(`[id=%q]`, forID)).First()
			targetCount, err := target.Count()
			if err != nil {
				return nil, err
			}
			if targetCount > 0 {
				return &element{locator: target}, nil
			}
		}
	}

	obs.From(ctx).With("pkg", "playwrightdrv").Debug("field_not_found", "field", name)
	return nil, fmt.Errorf("no form field matches %q", name)
}
