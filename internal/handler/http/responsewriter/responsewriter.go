// Package responsewriter records what a handler sent so middleware can log and
// measure it after the fact.
package responsewriter

import (
	"net/http"
)

// ResponseWriter remembers the status, body size and redirect target of a response.
type ResponseWriter struct {
	http.ResponseWriter
	status   int
	bytes    int
	location string
	wrote    bool
}

// Wrap returns a recorder around w. The status reads 200 until the handler says otherwise.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status only; later calls are dropped like net/http does.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.wrote {
		return
	}
	w.wrote = true
	w.status = status
	if status >= 300 && status < 400 {
		w.location = w.Header().Get("Location")
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *ResponseWriter) Flush() {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// StatusCode returns the status sent, or 200 when nothing was sent yet.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten returns the body size so far.
func (w *ResponseWriter) BytesWritten() int { return w.bytes }

// Location returns the redirect target of a 3xx response, or "".
func (w *ResponseWriter) Location() string { return w.location }

// Written reports whether the header has gone out.
func (w *ResponseWriter) Written() bool { return w.wrote }

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
