// Package browser holds end-to-end tests that drive the fixture server's
// editor page through a real browser. Tests skip when Playwright is not
// installed.
package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/playwrightdrv"
	"github.com/kuitang/editor-steps/internal/settings"
	"github.com/kuitang/editor-steps/internal/web"
)

const browserMaxTimeout = 5 * time.Second

// BrowserTestEnv bundles a running fixture server with a live page on it.
type BrowserTestEnv struct {
	Server  *httptest.Server
	Store   *settings.Store
	Page    playwright.Page
	Adapter *editor.Adapter
}

func templatesDir(t *testing.T) string {
	t.Helper()
	candidates := []string{
		"../../web/templates",
		"../web/templates",
		"./web/templates",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Fatalf("unable to locate templates directory from test working directory")
	return ""
}

// SetupBrowserTestEnv starts the fixture server, launches a browser, and
// navigates to the editor page. Skips the test when Playwright is missing.
func SetupBrowserTestEnv(t *testing.T) *BrowserTestEnv {
	t.Helper()

	store, err := settings.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	renderer, err := web.NewRenderer(templatesDir(t))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	mux := http.NewServeMux()
	web.NewWebHandler(renderer, store).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	browser := playwrightdrv.LaunchForTest(t)
	page := browser.NewPageForTest(t)
	if _, err := page.Goto(server.URL + "/editor"); err != nil {
		t.Fatalf("navigate to editor page: %v", err)
	}

	session := playwrightdrv.NewSession(page)
	locator := playwrightdrv.NewFieldLocator(page)
	adapter := editor.New(session, locator, editor.WithReadyTimeout(browserMaxTimeout))

	return &BrowserTestEnv{
		Server:  server,
		Store:   store,
		Page:    page,
		Adapter: adapter,
	}
}
