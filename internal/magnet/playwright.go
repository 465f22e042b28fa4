package magnet

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightConfig configures the Chromium session used by PlaywrightLauncher.
type PlaywrightConfig struct {
	Headless   bool
	NavTimeout time.Duration
}

// InstallPlaywright downloads the driver and Chromium if they are missing.
func InstallPlaywright() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// PlaywrightLauncher returns a Launcher that starts Chromium through playwright.
func PlaywrightLauncher(cfg PlaywrightConfig) Launcher {
	return func() (Browser, error) {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("start playwright: %w", err)
		}
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(cfg.Headless),
			Args:     []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu", "--disable-extensions"},
		})
		if err != nil {
			_ = pw.Stop()
			return nil, fmt.Errorf("launch chromium: %w", err)
		}
		return &pwBrowser{pw: pw, browser: browser, timeout: cfg.NavTimeout}, nil
	}
}

type pwBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout time.Duration
}

func (b *pwBrowser) NewPage() (Page, error) {
	page, err := b.browser.NewPage()
	if err != nil {
		return nil, err
	}
	// Images and fonts are never needed to drive the form.
	err = page.Route("**/*", func(route playwright.Route) {
		switch route.Request().ResourceType() {
		case "image", "font", "media":
			_ = route.Abort()
		default:
			_ = route.Continue()
		}
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("install request filter: %w", err)
	}
	return &pwPage{page: page, timeout: float64(b.timeout.Milliseconds())}, nil
}

func (b *pwBrowser) Close() error {
	err := b.browser.Close()
	if stopErr := b.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type pwPage struct {
	page    playwright.Page
	timeout float64 // milliseconds
}

func (p *pwPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(p.timeout),
	})
	return err
}

func (p *pwPage) Click(selector string) error {
	return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(p.timeout),
	})
}

func (p *pwPage) WaitVisible(selector string) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(p.timeout),
	})
}

func (p *pwPage) Fill(selector, value string) error {
	return p.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(p.timeout),
	})
}

func (p *pwPage) Close() error {
	return p.page.Close()
}
