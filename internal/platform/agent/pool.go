package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

// SessionPoolConfig holds the settings for the browser session pool.
type SessionPoolConfig struct {
	// MaxSessions bounds how many browser contexts may be open at once.
	// Acquire blocks once the bound is reached.
	MaxSessions int

	// Headless controls whether the underlying browser runs headless.
	Headless bool
}

// SessionPool owns one long-lived browser process and hands out isolated
// browser contexts, at most MaxSessions at a time. Each worker attempt
// acquires a session, uses its page, and releases it; contexts are never
// shared between attempts so cookies and storage cannot leak across
// users.
type SessionPool struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	slots   chan struct{}
	logger  *slog.Logger
}

// NewSessionPool starts playwright, launches a chromium instance, and
// prepares the session slots.
func NewSessionPool(config SessionPoolConfig, log *slog.Logger) (*SessionPool, error) {
	if config.MaxSessions <= 0 {
		return nil, errors.New("max sessions must be positive")
	}
	if log == nil {
		log = slog.Default()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(config.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	slots := make(chan struct{}, config.MaxSessions)
	for i := 0; i < config.MaxSessions; i++ {
		slots <- struct{}{}
	}

	return &SessionPool{
		pw:      pw,
		browser: browser,
		slots:   slots,
		logger:  log.With(slog.String("component", "browser_session_pool")),
	}, nil
}

// Session is one isolated browser context checked out of the pool.
type Session struct {
	pool       *SessionPool
	browserCtx playwright.BrowserContext
	page       playwright.Page
	released   bool
}

// Page returns the session's page.
func (s *Session) Page() playwright.Page { return s.page }

// Release closes the session's context and returns its slot to the pool.
// Safe to call once; later calls are no-ops.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true

	if err := s.browserCtx.Close(); err != nil {
		s.pool.logger.Warn("failed to close browser context",
			slog.String("error", err.Error()))
	}
	s.pool.slots <- struct{}{}
}

// Acquire blocks until a session slot is free or the context is done,
// then opens a fresh browser context with a single page.
func (p *SessionPool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for browser session: %w", ctx.Err())
	}

	browserCtx, err := p.browser.NewContext()
	if err != nil {
		p.slots <- struct{}{}
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		p.slots <- struct{}{}
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &Session{pool: p, browserCtx: browserCtx, page: page}, nil
}

// Close shuts down the browser and stops playwright. In-flight sessions
// are invalidated; callers should stop the worker pool first.
func (p *SessionPool) Close() error {
	var firstErr error
	if err := p.browser.Close(); err != nil {
		firstErr = fmt.Errorf("could not close browser: %w", err)
	}
	if err := p.pw.Stop(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("could not stop playwright: %w", err)
	}
	return firstErr
}
