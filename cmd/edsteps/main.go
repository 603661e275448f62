// edsteps runs Gherkin feature files against a live site's rich-text
// editors. It boots a browser, navigates to the target URL, and wires
// the editor step definitions into a godog suite.
package main

import (
	"fmt"
	"os"

	"github.com/cucumber/godog"

	"github.com/kuitang/editor-steps/internal/config"
	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/obs"
	"github.com/kuitang/editor-steps/internal/playwrightdrv"
	"github.com/kuitang/editor-steps/internal/steps"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := config.ParseFlags()
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "edsteps: %v\n", err)
		return 2
	}

	obs.Init()
	log := obs.Pkg("edsteps")

	browser, err := playwrightdrv.Launch(cfg.Headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "edsteps: launch browser: %v\n", err)
		fmt.Fprintln(os.Stderr, "hint: npx playwright install chromium")
		return 2
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "edsteps: open page: %v\n", err)
		return 2
	}
	if _, err := page.Goto(cfg.BaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "edsteps: navigate to %s: %v\n", cfg.BaseURL, err)
		return 2
	}
	log.Info("run_starting", "base_url", cfg.BaseURL, "features", cfg.FeaturesDir)

	session := playwrightdrv.NewSession(page)
	locator := playwrightdrv.NewFieldLocator(page)
	adapter := editor.New(session, locator, editor.WithReadyTimeout(cfg.ReadyTimeout))
	tc := steps.NewTestContext(adapter)

	suite := godog.TestSuite{
		Name: "editor-steps",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			steps.RegisterEditorSteps(sc, tc)
		},
		Options: &godog.Options{
			Format: "pretty",
			Paths:  []string{cfg.FeaturesDir},
			Output: os.Stdout,
			Strict: true,
		},
	}
	return suite.Run()
}
