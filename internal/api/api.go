package api

import (
	"log/slog"
	"net/http"
	"slide-generator/pkg/api"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxFormMemory = 8 << 20

// GeneratorService is a local stand-in for the generation service. It accepts
// submissions and echoes them back without generating anything.
type GeneratorService struct {
	mu       sync.Mutex
	accepted []api.SubmissionPayload
}

func NewGeneratorService() *GeneratorService {
	return &GeneratorService{}
}

func (s *GeneratorService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post(api.GeneratorPath, RestHandler(s.Generate))
}

func (s *GeneratorService) Generate(r *http.Request) (any, error) {
	req, err := ParseMultipartRequest[api.SubmissionPayload](r, maxFormMemory)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.PresentationTitle) == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "%s is required", api.FieldPresentationTitle)
	}
	if strings.TrimSpace(req.TemplateChoice) == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "%s is required", api.FieldTemplateChoice)
	}
	if req.NumberOfSlide != "" {
		if n, err := strconv.Atoi(req.NumberOfSlide); err != nil || n <= 0 {
			return nil, CodedErrorf(http.StatusBadRequest, "invalid %s '%s': must be a positive integer", api.FieldNumberOfSlide, req.NumberOfSlide)
		}
	}

	s.mu.Lock()
	s.accepted = append(s.accepted, req)
	s.mu.Unlock()

	jobId := uuid.New()
	slog.Info("accepted generation request", "job_id", jobId, "title", req.PresentationTitle, "template", req.TemplateChoice, "slides", req.NumberOfSlide)

	return api.GenerateResponse{
		JobId:     jobId,
		Status:    "accepted",
		Title:     req.PresentationTitle,
		Presenter: req.PresenterName,
		Slides:    req.NumberOfSlide,
		Template:  req.TemplateChoice,
		Images:    req.InsertImage,
	}, nil
}

// Accepted returns the submissions received so far.
func (s *GeneratorService) Accepted() []api.SubmissionPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.SubmissionPayload(nil), s.accepted...)
}
