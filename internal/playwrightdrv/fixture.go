package playwrightdrv

import (
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultPageTimeout bounds individual page operations. Readiness waits
// carry their own explicit timeout through Session.WaitFor.
const DefaultPageTimeout = 5 * time.Second

// Browser owns a Playwright runtime and a launched browser.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts Playwright and launches Chromium.
func Launch(headless bool) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return &Browser{pw: pw, browser: browser}, nil
}

// LaunchForTest launches a headless browser, skipping the test when
// Playwright or Chromium is unavailable on this machine.
func LaunchForTest(t *testing.T) *Browser {
	t.Helper()

	b, err := Launch(true)
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	t.Cleanup(b.Close)
	return b
}

// NewPage creates a page with default timeouts applied.
func (b *Browser) NewPage() (playwright.Page, error) {
	page, err := b.browser.NewPage()
	if err != nil {
		return nil, err
	}
	ms := float64(DefaultPageTimeout.Milliseconds())
	page.SetDefaultTimeout(ms)
	page.SetDefaultNavigationTimeout(ms)
	return page, nil
}

// NewPageForTest creates a page, failing the test on error.
func (b *Browser) NewPageForTest(t *testing.T) playwright.Page {
	t.Helper()

	page, err := b.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	t.Cleanup(func() { _ = page.Close() })
	return page
}

// Close releases the browser and the Playwright runtime.
func (b *Browser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.pw != nil {
		_ = b.pw.Stop()
	}
}
