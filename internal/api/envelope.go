package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope structure itself changes,
// so clients can detect incompatible servers before parsing data.
const envelopeVersion = 1

// Envelope is the uniform wire wrapper for every API response. Success
// responses carry the payload under data; failures carry a coded error.
type Envelope struct {
	V       int       `json:"v" doc:"Envelope version"`
	Success bool      `json:"success" doc:"Whether the request succeeded"`
	Data    any       `json:"data,omitempty" doc:"Response payload"`
	Error   *APIError `json:"error,omitempty" doc:"Error details on failure"`
}

// EnvelopeTransformer wraps every outgoing body in the response envelope.
// Error bodies produced by the huma.NewError override arrive here as
// *APIError and land under error; everything else is payload.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{V: envelopeVersion, Success: false, Error: apiErr}, nil
	}

	// Error bodies that bypassed the NewError override (huma's own
	// models) must not read as success.
	code, err := strconv.Atoi(status)
	if err == nil && code >= 400 {
		if model, ok := v.(*huma.ErrorModel); ok {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Error: &APIError{
					status:  model.Status,
					Code:    statusToCode(model.Status),
					Message: model.Title,
					Details: model.Errors,
				},
			}, nil
		}
		return &Envelope{V: envelopeVersion, Success: false, Data: v}, nil
	}

	return &Envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
