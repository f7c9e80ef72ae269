package form

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserForm reads the live DOM of a page loaded in headless Chrome, so
// values typed into the running page are what gets submitted.
type BrowserForm struct {
	ctx     context.Context
	timeout time.Duration
}

// OpenBrowserForm starts a headless browser, loads pageURL and waits for the
// generate button to be present. The returned close function releases the
// browser.
func OpenBrowserForm(ctx context.Context, pageURL string, timeout time.Duration) (*BrowserForm, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	closeFn := func() {
		cancelBrowser()
		cancelAlloc()
	}

	form := NewBrowserForm(browserCtx, timeout)

	loadCtx, cancel := form.callContext()
	defer cancel()

	if err := chromedp.Run(loadCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("error loading page %s: %w", pageURL, err)
	}

	return form, closeFn, nil
}

// NewBrowserForm wraps an existing chromedp context whose current page holds
// the generator form.
func NewBrowserForm(ctx context.Context, timeout time.Duration) *BrowserForm {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BrowserForm{ctx: ctx, timeout: timeout}
}

func (f *BrowserForm) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(f.ctx, f.timeout)
}

func (f *BrowserForm) evaluate(expr string, res any) error {
	ctx, cancel := f.callContext()
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, res)); err != nil {
		return fmt.Errorf("error evaluating form lookup in browser: %w", err)
	}
	return nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (f *BrowserForm) FieldValue(id string) (string, error) {
	var value *string
	expr := fmt.Sprintf(`(() => { const el = document.getElementById(%s); return el ? String(el.value) : null; })()`, jsString(id))
	if err := f.evaluate(expr, &value); err != nil {
		return "", err
	}
	if value == nil {
		return "", fieldNotFound(id)
	}
	return *value, nil
}

func (f *BrowserForm) Checked(id string) (bool, error) {
	var checked *bool
	expr := fmt.Sprintf(`(() => { const el = document.getElementById(%s); return el ? !!el.checked : null; })()`, jsString(id))
	if err := f.evaluate(expr, &checked); err != nil {
		return false, err
	}
	if checked == nil {
		return false, fieldNotFound(id)
	}
	return *checked, nil
}

func (f *BrowserForm) CheckedChoice(group string) (string, error) {
	var checked *[]string
	expr := fmt.Sprintf(`(() => {
	const els = Array.from(document.getElementsByName(%s));
	if (els.length === 0) return null;
	return els.filter(el => el.checked).map(el => String(el.value));
})()`, jsString(group))
	if err := f.evaluate(expr, &checked); err != nil {
		return "", err
	}
	if checked == nil {
		return "", fieldNotFound(group)
	}
	return pickChoice(group, *checked)
}
