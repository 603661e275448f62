// Fixture server for the editor step toolkit. Serves the rich-text
// fixture page, the admin settings report, and the MCP tool endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/editor-steps/internal/config"
	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/mcp"
	"github.com/kuitang/editor-steps/internal/obs"
	"github.com/kuitang/editor-steps/internal/playwrightdrv"
	"github.com/kuitang/editor-steps/internal/ratelimit"
	"github.com/kuitang/editor-steps/internal/settings"
	"github.com/kuitang/editor-steps/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.ParseFlags()
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}

	obs.Init()
	log := obs.Pkg("server")

	var store *settings.Store
	if cfg.DatabasePath == ":memory:" {
		store, err = settings.OpenInMemory()
	} else {
		store, err = settings.Open(cfg.DatabasePath, cfg.SettingsKey)
	}
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()
	if err := store.Seed(context.Background()); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	renderer, err := web.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	limiter := ratelimit.NewRateLimiter(ratelimit.DefaultConfig)
	defer limiter.Stop()

	browser := newLazyBrowser(cfg)
	defer browser.Close()

	mux := http.NewServeMux()
	web.NewWebHandler(renderer, store).RegisterRoutes(mux)
	mux.Handle("/mcp", browser.mcpHandler())

	handler := obs.RequestContextMiddleware(
		obs.AccessLogMiddleware("server",
			ratelimit.Middleware(limiter)(mux)))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("server_shutting_down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// lazyBrowser defers Playwright startup until the first MCP tool call so
// the fixture server runs without a browser install when the MCP surface
// is unused.
type lazyBrowser struct {
	cfg *config.Config

	mu      sync.Mutex
	browser *playwrightdrv.Browser
	page    playwright.Page
	mcp     *mcp.Server
	err     error
}

func newLazyBrowser(cfg *config.Config) *lazyBrowser {
	return &lazyBrowser{cfg: cfg}
}

func (b *lazyBrowser) mcpHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server, err := b.server()
		if err != nil {
			obs.Pkg("server").Error("mcp_browser_unavailable", "error", err)
			http.Error(w, "browser unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		server.ServeHTTP(w, r)
	})
}

func (b *lazyBrowser) server() (*mcp.Server, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mcp != nil {
		return b.mcp, nil
	}
	if b.err != nil {
		return nil, b.err
	}

	browser, err := playwrightdrv.Launch(b.cfg.Headless)
	if err != nil {
		b.err = err
		return nil, err
	}
	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		b.err = err
		return nil, err
	}
	if _, err := page.Goto(b.cfg.BaseURL + "/editor"); err != nil {
		browser.Close()
		b.err = err
		return nil, err
	}

	session := playwrightdrv.NewSession(page)
	locator := playwrightdrv.NewFieldLocator(page)
	adapter := editor.New(session, locator, editor.WithReadyTimeout(b.cfg.ReadyTimeout))

	b.browser = browser
	b.page = page
	b.mcp = mcp.NewServer(adapter)
	return b.mcp, nil
}

func (b *lazyBrowser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
}
