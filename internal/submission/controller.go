package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slide-generator/internal/form"
	"slide-generator/internal/indicator"
	"slide-generator/pkg/api"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultIndicatorInterval = 9500 * time.Millisecond

// Notifier receives every failed submission so it can be presented to the
// user.
type Notifier interface {
	NotifyFailure(err error)
}

type NotifierFunc func(err error)

func (f NotifierFunc) NotifyFailure(err error) {
	f(err)
}

type Config struct {
	BaseURL string

	// IndicatorInterval is how long a request has to be outstanding before the
	// indicator is shown. Zero shows it as soon as the request starts.
	IndicatorInterval time.Duration

	// Timeout bounds the generation request. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration

	Notifier Notifier

	// HTTPClient replaces the default transport, mostly for tests.
	HTTPClient *http.Client
}

// Controller turns one submit action into exactly one generation request and
// owns the progress indicator while that request is outstanding.
type Controller struct {
	client    *resty.Client
	form      form.Source
	indicator indicator.Indicator
	notifier  Notifier

	interval time.Duration
	timeout  time.Duration

	inFlight atomic.Bool
}

func NewController(src form.Source, ind indicator.Indicator, cfg Config) *Controller {
	var client *resty.Client
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetRetryCount(0).
		SetLogger(slogLogger{})

	return &Controller{
		client:    client,
		form:      src,
		indicator: ind,
		notifier:  cfg.Notifier,
		interval:  cfg.IndicatorInterval,
		timeout:   cfg.Timeout,
	}
}

func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Submit reads the form, posts it to the generator and returns the decoded
// response. A call made while another is outstanding returns
// ErrSubmissionInProgress without side effects.
func (c *Controller) Submit(ctx context.Context) (api.GenerateResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		slog.Warn("ignoring submit, a submission is already outstanding")
		return api.GenerateResult{}, ErrSubmissionInProgress
	}
	defer c.inFlight.Store(false)

	submissionId := uuid.New()

	res, err := c.submit(ctx, submissionId)
	if err != nil {
		slog.Error("submission failed", "submission_id", submissionId, "error", err)
		if c.notifier != nil {
			c.notifier.NotifyFailure(err)
		}
		return api.GenerateResult{}, err
	}

	slog.Info("submission completed", "submission_id", submissionId, "status_code", res.StatusCode)
	return res, nil
}

func (c *Controller) submit(ctx context.Context, submissionId uuid.UUID) (api.GenerateResult, error) {
	payload, err := ReadPayload(c.form)
	if err != nil {
		return api.GenerateResult{}, err
	}

	fields, err := EncodePayload(payload)
	if err != nil {
		return api.GenerateResult{}, err
	}

	release := c.startIndicator()
	defer release()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.Debug("sending generation request", "submission_id", submissionId, "title", payload.PresentationTitle, "template", payload.TemplateChoice)

	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetMultipartFormData(fields).
		Post(api.GeneratorPath)
	if err != nil {
		return api.GenerateResult{}, &NetworkError{Err: err}
	}

	if !res.IsSuccess() {
		return api.GenerateResult{}, &ServerError{
			StatusCode: res.StatusCode(),
			StatusText: statusText(res),
			Body:       res.String(),
		}
	}

	body := res.Body()
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return api.GenerateResult{}, &DecodeError{Err: err}
	}

	return api.GenerateResult{
		SubmissionId: submissionId,
		StatusCode:   res.StatusCode(),
		Raw:          json.RawMessage(body),
		Data:         data,
	}, nil
}

// startIndicator shows the indicator on every interval tick until the
// returned release function is called. Release stops the ticker, waits for
// any tick in progress and hides the indicator.
func (c *Controller) startIndicator() func() {
	if c.interval <= 0 {
		c.indicator.SetVisible(true)
		return func() { c.indicator.SetVisible(false) }
	}

	ticker := time.NewTicker(c.interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.indicator.SetVisible(true)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
			<-done
			c.indicator.SetVisible(false)
		})
	}
}

// statusText is the reason phrase of the response, e.g. "Internal Server Error".
func statusText(res *resty.Response) string {
	code := res.StatusCode()
	text := strings.TrimSpace(strings.TrimPrefix(res.Status(), strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	if text == "" {
		text = fmt.Sprintf("status %d", code)
	}
	return text
}

type slogLogger struct{}

func (slogLogger) Errorf(format string, v ...any) {
	slog.Error(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (slogLogger) Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (slogLogger) Debugf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(strings.TrimSpace(format), v...))
}
