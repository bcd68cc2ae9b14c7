package api

// HTTPError carries the status and client-facing message for a failed
// request. ErrorLog holds the underlying cause, which goes to the log but
// never to the client.
type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.ErrorLog
}

// ApiError is the JSON error body returned to clients.
type ApiError struct {
	Error string `json:"message"`
}
