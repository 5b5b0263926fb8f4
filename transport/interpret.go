package transport

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/surveykit/surveykit/models"
)

const resultSuccess = "success"

var xmlPreamble = []byte("<?xml")

// Payload is an interpreted service response
type Payload struct {
	// Raw is the verbatim response body
	Raw []byte
	// Data is the decoded JSON object. It is nil when the body was XML, in
	// which case Raw holds the unparsed document
	Data map[string]interface{}
}

// IsXML reports whether the body was an XML passthrough rather than JSON
func (p *Payload) IsXML() bool {
	return p.Data == nil
}

// Interpret maps a raw status and body to a decoded payload or a typed error.
//
// A non-success status whose body parses as JSON carrying result and errors
// keys becomes an APIError; any other non-success response becomes an
// HTTPError holding the original status and body. Success responses starting
// with an XML preamble pass through unparsed regardless of the declared
// content type; everything else is decoded as JSON and checked for an
// embedded non-success result marker
func Interpret(status int, body []byte) (*Payload, error) {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		if apiErr := apiErrorFromBody(body); apiErr != nil {
			return nil, apiErr
		}

		return nil, &HTTPError{Status: status, Body: body}
	}

	// in the rare case that the data is actually xml, return it as it is
	if bytes.HasPrefix(body, xmlPreamble) {
		return &Payload{Raw: body}, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "decoding response body")
	}

	if result, ok := data["result"].(string); ok && result != resultSuccess {
		if apiErr := apiErrorFromBody(body); apiErr != nil {
			return nil, apiErr
		}

		return nil, NewAPIError([]models.ErrorDetail{{Text: "service reported " + result}})
	}

	return &Payload{Raw: body, Data: data}, nil
}

// apiErrorFromBody attempts to reinterpret a body as a structured service
// error. A malformed or non-JSON body returns nil so the caller can surface
// the original HTTP failure instead
func apiErrorFromBody(body []byte) *APIError {
	var parsed struct {
		Result *string              `json:"result"`
		Errors []models.ErrorDetail `json:"errors"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}
	if parsed.Result == nil || len(parsed.Errors) == 0 {
		return nil
	}

	return NewAPIError(parsed.Errors)
}
