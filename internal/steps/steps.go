// Package steps registers the editor step definitions with a godog
// scenario context. Each sentence pattern maps to one adapter operation;
// both CKEditor and WYSIWYG phrasings are accepted, with an optional
// field/id parameter in each action and assertion.
package steps

import (
	"context"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/obs"
)

// Step patterns, exported so they can be tested against the sentence
// table directly. Optional capture groups yield empty strings, which the
// adapter treats as "default instance".
const (
	PatternCKEditorFieldExists = `^(?:the )?CKEditor for the "([^"]*)" field (?:should )?exists?$`
	PatternWYSIWYGFieldExists  = `^(?:the )?WYSIWYG for the "([^"]*)" field (?:should )?exists?$`
	PatternPutIntoCKEditor     = `^I put "([^"]*)" into CKEditor(?: "([^"]*)" field)?$`
	PatternPutIntoWYSIWYG      = `^I put "([^"]*)" into WYSIWYG(?: of "([^"]*)" field)?$`
	PatternCKEditorContains    = `^CKEditor(?: "([^"]*)")? should contain "([^"]*)"$`
	PatternCKEditorMatches     = `^CKEditor(?: "([^"]*)")? should match "([^"]*)"$`
	PatternExecuteCommand      = `^I execute the "([^"]*)" command in CKEditor(?: "([^"]*)")?$`
)

// TestContext carries the adapter shared by the registered steps.
type TestContext struct {
	Adapter *editor.Adapter
}

// NewTestContext creates a step context over the adapter.
func NewTestContext(adapter *editor.Adapter) *TestContext {
	return &TestContext{Adapter: adapter}
}

// RegisterEditorSteps registers the editor step definitions.
func RegisterEditorSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return obs.WithScenarioID(ctx, uuid.NewString()), nil
	})

	sc.Step(PatternCKEditorFieldExists, tc.editorFieldExists)
	sc.Step(PatternWYSIWYGFieldExists, tc.editorFieldExists)
	sc.Step(PatternPutIntoCKEditor, tc.putIntoEditor)
	sc.Step(PatternPutIntoWYSIWYG, tc.putIntoEditor)
	sc.Step(PatternCKEditorContains, tc.editorContains)
	sc.Step(PatternCKEditorMatches, tc.editorMatches)
	sc.Step(PatternExecuteCommand, tc.executeCommand)
}

func (tc *TestContext) editorFieldExists(ctx context.Context, field string) error {
	_, err := tc.Adapter.ResolveField(ctx, field)
	return err
}

func (tc *TestContext) putIntoEditor(ctx context.Context, text, field string) error {
	return tc.Adapter.InsertContent(ctx, text, field)
}

func (tc *TestContext) editorContains(ctx context.Context, id, text string) error {
	return tc.Adapter.Contains(ctx, text, id)
}

func (tc *TestContext) editorMatches(ctx context.Context, id, pattern string) error {
	return tc.Adapter.Matches(ctx, pattern, id)
}

func (tc *TestContext) executeCommand(ctx context.Context, command, id string) error {
	return tc.Adapter.ExecCommand(ctx, command, id, nil)
}
