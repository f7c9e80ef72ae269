package submission_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	stub "slide-generator/internal/api"
	"slide-generator/internal/form"
	"slide-generator/internal/indicator"
	"slide-generator/internal/submission"
	"slide-generator/pkg/api"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledForm() *form.StaticForm {
	return form.NewStaticForm().
		SetValue(api.FieldPresentationTitle, "Cardiac Imaging").
		SetValue(api.FieldPresenterName, "Dr. Rao").
		SetValue(api.FieldNumberOfSlide, "10").
		SetValue(api.FieldUserText, "echocardiography basics").
		SetChecked(api.FieldInsertImage, true).
		AddChoice(api.FieldTemplateChoice, "dark", false).
		AddChoice(api.FieldTemplateChoice, "ocean", true)
}

type capturedRequest struct {
	method string
	path   string
	fields map[string][]string
}

// generatorServer records every request it receives and answers with handler.
func generatorServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, func() []capturedRequest) {
	var mu sync.Mutex
	var requests []capturedRequest

	router := chi.NewRouter()
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{method: r.Method, path: r.URL.Path}
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			req.fields = r.MultipartForm.Value
		}
		mu.Lock()
		requests = append(requests, req)
		mu.Unlock()

		handler(w, r)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), requests...)
	}
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestSubmitSendsOneRequest(t *testing.T) {
	server, requests := generatorServer(t, jsonHandler(`{"status":"accepted","download":"/files/deck.pptx"}`))

	rec := &indicator.Recorder{}
	controller := submission.NewController(filledForm(), rec, submission.Config{
		BaseURL:           server.URL,
		IndicatorInterval: time.Hour,
	})

	res, err := controller.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]any{"status": "accepted", "download": "/files/deck.pptx"}, res.Data)
	assert.JSONEq(t, `{"status":"accepted","download":"/files/deck.pptx"}`, string(res.Raw))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].method)
	assert.Equal(t, "/generator", reqs[0].path)
	assert.Equal(t, map[string][]string{
		"presentation_title": {"Cardiac Imaging"},
		"presenter_name":     {"Dr. Rao"},
		"number_of_slide":    {"10"},
		"user_text":          {"echocardiography basics"},
		"insert_image":       {"true"},
		"template_choice":    {"ocean"},
	}, reqs[0].fields)

	assert.False(t, rec.Visible())
	assert.Empty(t, rec.Transitions())
	assert.False(t, controller.InFlight())
}

func TestSubmitAgainstStubGenerator(t *testing.T) {
	service := stub.NewGeneratorService()
	router := chi.NewRouter()
	service.AddRoutes(router)
	server := httptest.NewServer(router)
	defer server.Close()

	f := filledForm().SetChecked(api.FieldInsertImage, false)
	controller := submission.NewController(f, &indicator.Recorder{}, submission.Config{BaseURL: server.URL + "/"})

	res, err := controller.Submit(context.Background())
	require.NoError(t, err)

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, false, data["images"])

	assert.Equal(t, []api.SubmissionPayload{{
		PresentationTitle: "Cardiac Imaging",
		PresenterName:     "Dr. Rao",
		NumberOfSlide:     "10",
		UserText:          "echocardiography basics",
		InsertImage:       false,
		TemplateChoice:    "ocean",
	}}, service.Accepted())
}

func TestSubmitFieldLookupError(t *testing.T) {
	server, requests := generatorServer(t, jsonHandler(`{}`))

	noTemplate := filledForm()
	noTemplate.Check(api.FieldTemplateChoice, "")

	cases := map[string]struct {
		form  *form.StaticForm
		field string
		err   error
	}{
		"NoTemplateChecked": {
			form:  noTemplate,
			field: api.FieldTemplateChoice,
			err:   form.ErrNoChoiceChecked,
		},
		"MissingTitle": {
			form: form.NewStaticForm().
				SetValue(api.FieldPresenterName, "x").
				AddChoice(api.FieldTemplateChoice, "dark", true),
			field: api.FieldPresentationTitle,
			err:   form.ErrFieldNotFound,
		},
		"MissingCheckbox": {
			form: form.NewStaticForm().
				SetValue(api.FieldPresentationTitle, "t").
				SetValue(api.FieldPresenterName, "p").
				SetValue(api.FieldNumberOfSlide, "3").
				SetValue(api.FieldUserText, "u").
				AddChoice(api.FieldTemplateChoice, "dark", true),
			field: api.FieldInsertImage,
			err:   form.ErrFieldNotFound,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var notified error
			rec := &indicator.Recorder{}
			controller := submission.NewController(tc.form, rec, submission.Config{
				BaseURL:  server.URL,
				Notifier: submission.NotifierFunc(func(err error) { notified = err }),
			})

			_, err := controller.Submit(context.Background())
			var lookupErr *submission.FieldLookupError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, tc.field, lookupErr.Field)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, err, notified)

			assert.Equal(t, 0, rec.Calls())
		})
	}

	assert.Empty(t, requests())
}

func TestSubmitServerError(t *testing.T) {
	server, requests := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "generation backend unavailable", http.StatusInternalServerError)
	})

	var notified error
	rec := &indicator.Recorder{}
	controller := submission.NewController(filledForm(), rec, submission.Config{
		BaseURL:           server.URL,
		IndicatorInterval: 10 * time.Millisecond,
		Notifier:          submission.NotifierFunc(func(err error) { notified = err }),
	})

	_, err := controller.Submit(context.Background())

	var serverErr *submission.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
	assert.Equal(t, "Internal Server Error", serverErr.StatusText)
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Contains(t, serverErr.Body, "generation backend unavailable")
	assert.Equal(t, err, notified)

	assert.Len(t, requests(), 1)
	assert.False(t, rec.Visible())
}

func TestSubmitDecodeError(t *testing.T) {
	server, _ := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	rec := &indicator.Recorder{}
	controller := submission.NewController(filledForm(), rec, submission.Config{BaseURL: server.URL, IndicatorInterval: time.Hour})

	_, err := controller.Submit(context.Background())

	var decodeErr *submission.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.False(t, rec.Visible())
}

func TestSubmitNetworkError(t *testing.T) {
	t.Run("ConnectionReset", func(t *testing.T) {
		server, requests := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
			hj, ok := w.(http.Hijacker)
			if !ok {
				http.Error(w, "hijacking not supported", http.StatusInternalServerError)
				return
			}
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
			}
		})

		var notified error
		rec := &indicator.Recorder{}
		controller := submission.NewController(filledForm(), rec, submission.Config{
			BaseURL:           server.URL,
			IndicatorInterval: 10 * time.Millisecond,
			Notifier:          submission.NotifierFunc(func(err error) { notified = err }),
		})

		_, err := controller.Submit(context.Background())

		var netErr *submission.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, err, notified)
		assert.Len(t, requests(), 1)
		assert.False(t, rec.Visible())
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		rec := &indicator.Recorder{}
		controller := submission.NewController(filledForm(), rec, submission.Config{BaseURL: url})

		_, err := controller.Submit(context.Background())

		var netErr *submission.NetworkError
		assert.ErrorAs(t, err, &netErr)
		assert.Equal(t, []bool{true, false}, rec.Transitions())
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		server, _ := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})

		rec := &indicator.Recorder{}
		controller := submission.NewController(filledForm(), rec, submission.Config{
			BaseURL:           server.URL,
			IndicatorInterval: time.Hour,
			Timeout:           50 * time.Millisecond,
		})

		start := time.Now()
		_, err := controller.Submit(context.Background())

		var netErr *submission.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.False(t, rec.Visible())
	})
}

func TestSubmitWhileOutstanding(t *testing.T) {
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server, requests := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"status":"accepted"}`))
	})

	rec := &indicator.Recorder{}
	var notified atomic.Int32
	controller := submission.NewController(filledForm(), rec, submission.Config{
		BaseURL:           server.URL,
		IndicatorInterval: time.Hour,
		Notifier:          submission.NotifierFunc(func(error) { notified.Add(1) }),
	})

	firstErr := make(chan error, 1)
	go func() {
		_, err := controller.Submit(context.Background())
		firstErr <- err
	}()

	<-arrived
	assert.True(t, controller.InFlight())

	_, err := controller.Submit(context.Background())
	assert.ErrorIs(t, err, submission.ErrSubmissionInProgress)
	assert.Equal(t, int32(0), notified.Load())

	close(release)
	require.NoError(t, <-firstErr)
	assert.Len(t, requests(), 1)
	assert.False(t, controller.InFlight())

	// Once the first submission resolved a new one is accepted.
	go func() { <-arrived }()
	_, err = controller.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, requests(), 2)
}

func TestIndicatorVisibility(t *testing.T) {
	const interval = 100 * time.Millisecond

	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server, _ := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{}`))
	})

	rec := &indicator.Recorder{}
	controller := submission.NewController(filledForm(), rec, submission.Config{
		BaseURL:           server.URL,
		IndicatorInterval: interval,
	})

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		_, err := controller.Submit(context.Background())
		done <- err
	}()

	<-arrived
	if time.Since(start) < interval/2 {
		assert.False(t, rec.Visible(), "indicator shown before the first interval elapsed")
	}

	assert.Eventually(t, rec.Visible, 2*time.Second, 10*time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	assert.False(t, rec.Visible())
	assert.Equal(t, []bool{true, false}, rec.Transitions())

	// No tick fires after the submission resolved.
	calls := rec.Calls()
	time.Sleep(3 * interval)
	assert.Equal(t, calls, rec.Calls())
}

func TestFieldsCapturedAtSubmit(t *testing.T) {
	f := filledForm()
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server, requests := generatorServer(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{}`))
	})

	controller := submission.NewController(f, &indicator.Recorder{}, submission.Config{BaseURL: server.URL, IndicatorInterval: time.Hour})

	done := make(chan error, 1)
	go func() {
		_, err := controller.Submit(context.Background())
		done <- err
	}()

	<-arrived
	f.SetValue(api.FieldPresentationTitle, "Edited after submit")
	close(release)
	require.NoError(t, <-done)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"Cardiac Imaging"}, reqs[0].fields[api.FieldPresentationTitle])
}
