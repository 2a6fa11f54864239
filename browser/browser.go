package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/Angabebr/shop-tools/logger"
)

var (
	// ErrNotFound means no element matched the selector.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout means the browser did not finish an action in time.
	ErrTimeout = errors.New("browser action timed out")
)

// Options controls how Chrome is launched.
type Options struct {
	ExecPath    string
	UserDataDir string
	Headless    bool
	// ActionTimeout bounds a single click or keystroke sequence.
	ActionTimeout time.Duration
}

type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

var ignoredLogPatterns = []string{
	"could not unmarshal event",
	"unexpected end of JSON input",
	"unknown IPAddressSpace value",
	"unknown PrivateNetworkRequestPolicy value",
	"parse error",
	"cookiePart",
}

// NewBrowser launches Chrome and opens a blank tab. The returned Browser
// must be closed by the caller.
func NewBrowser(opts Options) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		msg := fmt.Sprintf(format, v...)
		for _, pattern := range ignoredLogPatterns {
			if strings.Contains(msg, pattern) {
				return
			}
		}
		logger.Log.Debug(msg)
	}))

	b := &Browser{
		ctx:         ctx,
		cancel:      cancel,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     opts.ActionTimeout,
	}
	if b.timeout <= 0 {
		b.timeout = 15 * time.Second
	}

	if err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser (is Chrome/Chromium installed?): %w", err)
	}

	return b, nil
}

// run executes actions on the tab, bounded by both ctx and timeout.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	select {
	case <-b.ctx.Done():
		return errors.New("browser context was canceled")
	default:
	}

	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// Navigate loads url and waits for the load event, up to timeout.
func (b *Browser) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := b.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// StopLoading aborts any pending page load, like pressing Esc.
func (b *Browser) StopLoading(ctx context.Context) error {
	return b.run(ctx, b.timeout, chromedp.Evaluate(`window.stop();`, nil))
}

// Find checks that at least one element matches selector right now.
func (b *Browser) Find(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	err := b.run(ctx, b.timeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return nil
}

// WaitClickable waits until selector is visible and enabled.
func (b *Browser) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	return b.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	)
}

func (b *Browser) ScrollIntoView(ctx context.Context, selector string) error {
	if err := b.Find(ctx, selector); err != nil {
		return err
	}
	script := fmt.Sprintf(`document.querySelector('%s').scrollIntoView({block: 'center'});`, escapeJSString(selector))
	return b.run(ctx, b.timeout, chromedp.Evaluate(script, nil))
}

// Click performs a native mouse click on the first match.
func (b *Browser) Click(ctx context.Context, selector string) error {
	if err := b.Find(ctx, selector); err != nil {
		return err
	}
	return b.run(ctx, b.timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// JSClick calls element.click() from page script. It works on elements
// covered by overlays where a native click would land elsewhere.
func (b *Browser) JSClick(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector('%s');
		if (!el) return false;
		el.click();
		return true;
	})()`, escapeJSString(selector))

	var clicked bool
	if err := b.run(ctx, b.timeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return nil
}

// SendText types text into the first match without clearing it.
func (b *Browser) SendText(ctx context.Context, selector, text string) error {
	if err := b.Find(ctx, selector); err != nil {
		return err
	}
	return b.run(ctx, b.timeout, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// Close shuts the tab and the browser process.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

func escapeJSString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
