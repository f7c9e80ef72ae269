package api

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Field names of the generator form. They are both the element ids of the
// controls on the generator page and the multipart field names expected by
// the /generator endpoint.
const (
	FieldPresentationTitle = "presentation_title"
	FieldPresenterName     = "presenter_name"
	FieldNumberOfSlide     = "number_of_slide"
	FieldUserText          = "user_text"
	FieldInsertImage       = "insert_image"
	FieldTemplateChoice    = "template_choice"
)

const GeneratorPath = "/generator"

// SubmissionPayload is built fresh for every submission from the raw form
// values and discarded once the request resolves.
type SubmissionPayload struct {
	PresentationTitle string `schema:"presentation_title"`
	PresenterName     string `schema:"presenter_name"`
	NumberOfSlide     string `schema:"number_of_slide"`
	UserText          string `schema:"user_text"`
	InsertImage       bool   `schema:"insert_image"`
	TemplateChoice    string `schema:"template_choice"`
}

type GenerateResult struct {
	SubmissionId uuid.UUID
	StatusCode   int

	Raw  json.RawMessage
	Data any
}

type GenerateResponse struct {
	JobId     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	Title     string    `json:"title"`
	Presenter string    `json:"presenter"`
	Slides    string    `json:"slides"`
	Template  string    `json:"template"`
	Images    bool      `json:"images"`
}
