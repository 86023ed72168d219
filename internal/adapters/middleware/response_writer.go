package middleware

import (
	"bufio"
	"net"
	"net/http"
)

// FlushableResponseWriter records status and size of a response while keeping
// the optional writer interfaces of the wrapped writer reachable.
type FlushableResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
	flusher       http.Flusher
	hijacker      http.Hijacker
}

func NewFlushableResponseWriter(w http.ResponseWriter) *FlushableResponseWriter {
	wrapper := &FlushableResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}

	wrapper.flusher, _ = w.(http.Flusher)
	wrapper.hijacker, _ = w.(http.Hijacker)

	return wrapper
}

// WriteHeader keeps the first status code, as net/http does.
func (f *FlushableResponseWriter) WriteHeader(code int) {
	if f.headerWritten {
		return
	}

	f.headerWritten = true
	f.statusCode = code
	f.ResponseWriter.WriteHeader(code)
}

func (f *FlushableResponseWriter) Write(b []byte) (int, error) {
	f.headerWritten = true

	n, err := f.ResponseWriter.Write(b)
	f.bytesWritten += int64(n)

	return n, err
}

func (f *FlushableResponseWriter) Flush() {
	if f.flusher != nil {
		f.flusher.Flush()
	}
}

func (f *FlushableResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if f.hijacker != nil {
		return f.hijacker.Hijack()
	}

	return nil, nil, http.ErrNotSupported
}

func (f *FlushableResponseWriter) StatusCode() int {
	return f.statusCode
}

func (f *FlushableResponseWriter) BytesWritten() int64 {
	return f.bytesWritten
}

func (f *FlushableResponseWriter) Unwrap() http.ResponseWriter {
	return f.ResponseWriter
}
