package models

// ErrorDetail describes a single application-level error reported by a
// service. Code is kept as the raw string from the wire ("0200"); note that
// multiple errors may map to the same code.
type ErrorDetail struct {
	Code string `json:"code"`
	Text string `json:"text"`
}
