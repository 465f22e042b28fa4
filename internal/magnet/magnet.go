// Package magnet submits magnet links to the web UI of a NAS download manager
// by scripting a browser.
package magnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrInvalidAddress is returned when the download manager address is not an http(s) URL.
	ErrInvalidAddress = errors.New("invalid server address")
	// ErrBrowser wraps failures to start the browser session.
	ErrBrowser = errors.New("browser unavailable")
)

// Submitter hands magnet links to a download manager. Every link is attempted
// independently; the returned lines describe each step.
type Submitter interface {
	Submit(ctx context.Context, links []string, target string) ([]string, error)
}

// Selectors locate the controls of the download manager UI.
type Selectors struct {
	NewTask        string
	Dialog         string
	Input          string
	ParseButton    string
	DownloadButton string
}

// DefaultSelectors returns the selectors of the stock NAS download manager.
func DefaultSelectors() Selectors {
	return Selectors{
		NewTask:        ".create__task",
		Dialog:         ".nas-task-dialog",
		Input:          ".el-textarea__inner",
		ParseButton:    ".el-dialog__footer .el-button.el-button--primary.task-parse-btn",
		DownloadButton: ".result-nas-task-dialog_footer .el-button.el-button--primary.task-parse-btn",
	}
}

// Merge returns s with every non-empty field of o applied.
func (s Selectors) Merge(o Selectors) Selectors {
	if o.NewTask != "" {
		s.NewTask = o.NewTask
	}
	if o.Dialog != "" {
		s.Dialog = o.Dialog
	}
	if o.Input != "" {
		s.Input = o.Input
	}
	if o.ParseButton != "" {
		s.ParseButton = o.ParseButton
	}
	if o.DownloadButton != "" {
		s.DownloadButton = o.DownloadButton
	}
	return s
}

// Browser is a running browser session.
type Browser interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single tab, addressed by CSS selectors.
type Page interface {
	Goto(url string) error
	Click(selector string) error
	WaitVisible(selector string) error
	Fill(selector, value string) error
	Close() error
}

// Launcher starts a browser session.
type Launcher func() (Browser, error)

// Options configures a NASSubmitter.
type Options struct {
	Selectors Selectors
	// StepDelay is waited after the parse button and after each link.
	StepDelay time.Duration
}

// NASSubmitter drives the download manager UI. Submissions are serialized;
// each one runs in its own browser session.
type NASSubmitter struct {
	launch    Launcher
	sel       Selectors
	stepDelay time.Duration
	logger    *slog.Logger
	sem       chan struct{}
}

// NewNASSubmitter creates a submitter. Zero-value selector fields fall back to
// DefaultSelectors.
func NewNASSubmitter(launch Launcher, opts Options, logger *slog.Logger) *NASSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &NASSubmitter{
		launch:    launch,
		sel:       DefaultSelectors().Merge(opts.Selectors),
		stepDelay: opts.StepDelay,
		logger:    logger,
		sem:       make(chan struct{}, 1),
	}
}

// Submit opens target once per link and walks the new-task dialog for it.
// Blank links are skipped. A failing link is logged and the loop moves on.
func (s *NASSubmitter) Submit(ctx context.Context, links []string, target string) ([]string, error) {
	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if !strings.HasPrefix(target, "http") {
		logf("[ERROR] invalid server address: %s", target)
		return lines, fmt.Errorf("%w: %q", ErrInvalidAddress, target)
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		logf("[ERROR] %v", ctx.Err())
		return lines, ctx.Err()
	}

	browser, err := s.launch()
	if err != nil {
		logf("[ERROR] cannot start browser: %v", err)
		return lines, fmt.Errorf("%w: %w", ErrBrowser, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.logger.Warn("close browser", "error", err)
		}
	}()

	page, err := browser.NewPage()
	if err != nil {
		logf("[ERROR] cannot open page: %v", err)
		return lines, fmt.Errorf("%w: %w", ErrBrowser, err)
	}
	defer func() { _ = page.Close() }()

	n := len(links)
	for i, raw := range links {
		if err := ctx.Err(); err != nil {
			logf("[ERROR] stopped before link %d: %v", i+1, err)
			return lines, err
		}
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}

		idx := i + 1
		logf("[%d/%d] processing: %s", idx, n, link)
		if err := s.submitOne(ctx, page, target, link); err != nil {
			logf("[%d] failed: %v", idx, err)
			s.logger.Warn("magnet submission failed", "index", idx, "error", err)
			continue
		}
		logf("[%d] download clicked", idx)
		s.logger.Info("magnet submitted", "index", idx, "target", target)

		if err := sleep(ctx, s.stepDelay); err != nil {
			logf("[ERROR] stopped after link %d: %v", idx, err)
			return lines, err
		}
	}

	logf("processed %d magnet links", n)
	return lines, nil
}

func (s *NASSubmitter) submitOne(ctx context.Context, page Page, target, link string) error {
	if err := page.Goto(target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	if err := page.Click(s.sel.NewTask); err != nil {
		return fmt.Errorf("click new task: %w", err)
	}
	if err := page.WaitVisible(s.sel.Dialog); err != nil {
		return fmt.Errorf("wait for task dialog: %w", err)
	}
	if err := page.Fill(s.sel.Input, link); err != nil {
		return fmt.Errorf("fill link: %w", err)
	}
	if err := page.Click(s.sel.ParseButton); err != nil {
		return fmt.Errorf("click parse: %w", err)
	}
	if err := sleep(ctx, s.stepDelay); err != nil {
		return err
	}
	if err := page.Click(s.sel.DownloadButton); err != nil {
		return fmt.Errorf("click download: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
