package submission

import (
	"fmt"
	"net/url"
	"slide-generator/internal/form"
	"slide-generator/pkg/api"

	"github.com/gorilla/schema"
)

// ReadPayload captures the current form values. The first control that cannot
// be read aborts the capture.
func ReadPayload(src form.Source) (api.SubmissionPayload, error) {
	var payload api.SubmissionPayload

	texts := []struct {
		field string
		dest  *string
	}{
		{api.FieldPresentationTitle, &payload.PresentationTitle},
		{api.FieldPresenterName, &payload.PresenterName},
		{api.FieldNumberOfSlide, &payload.NumberOfSlide},
		{api.FieldUserText, &payload.UserText},
	}
	for _, text := range texts {
		value, err := src.FieldValue(text.field)
		if err != nil {
			return payload, &FieldLookupError{Field: text.field, Err: err}
		}
		*text.dest = value
	}

	insertImage, err := src.Checked(api.FieldInsertImage)
	if err != nil {
		return payload, &FieldLookupError{Field: api.FieldInsertImage, Err: err}
	}
	payload.InsertImage = insertImage

	choice, err := src.CheckedChoice(api.FieldTemplateChoice)
	if err != nil {
		return payload, &FieldLookupError{Field: api.FieldTemplateChoice, Err: err}
	}
	payload.TemplateChoice = choice

	return payload, nil
}

// EncodePayload flattens the payload into multipart field values.
func EncodePayload(payload api.SubmissionPayload) (map[string]string, error) {
	values := url.Values{}
	if err := schema.NewEncoder().Encode(payload, values); err != nil {
		return nil, fmt.Errorf("error encoding submission payload: %w", err)
	}

	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields, nil
}
