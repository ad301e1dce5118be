package testafy

import (
	"github.com/tidwall/gjson"
)

// Response is a parsed JSON response body.
type Response struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// RequestID is the X-Request-Id sent with the request.
	RequestID string

	body gjson.Result
}

func newResponse(status int, requestID string, raw []byte) *Response {
	return &Response{
		StatusCode: status,
		RequestID:  requestID,
		body:       gjson.ParseBytes(raw),
	}
}

// Get returns the value at a gjson path, e.g. "passed" or "results.0.1".
func (r *Response) Get(path string) gjson.Result {
	return r.body.Get(path)
}

// Message returns the top-level "message" string, if any.
func (r *Response) Message() string {
	return r.stringField("message")
}

// ErrorMessage returns the top-level "error" string, if any.
func (r *Response) ErrorMessage() string {
	return r.stringField("error")
}

// Raw returns the response body as received.
func (r *Response) Raw() string {
	return r.body.Raw
}

func (r *Response) stringField(name string) string {
	v := r.body.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// record copies the diagnostic fields of the response into run.
func (r *Response) record(run TestRun) TestRun {
	if msg := r.Message(); msg != "" {
		run.LastMessage = msg
	}
	if e := r.ErrorMessage(); e != "" {
		run.LastError = e
	}
	return run
}
