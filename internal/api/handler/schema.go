package handler

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is returned with 400 when input fails validation.
// Fields maps the wire name of each offending field to its problem.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// dateLayout is the wire format of calendar dates such as birthdays.
const dateLayout = "2006-01-02"
