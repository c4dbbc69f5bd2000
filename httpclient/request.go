package httpclient

import "net/http"

// Request describes an outbound HTTP request.
type Request struct {
	// Method defaults to GET.
	Method string
	// URL is the absolute URL to call.
	URL string
	// Headers are request-specific headers (merged with client defaults).
	Headers map[string]string
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the raw response body, truncated to the configured maximum.
	Body []byte
	// Attempts is the number of requests sent, retries included.
	Attempts int
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header of the response.
func (r *Response) ContentType() string {
	return r.Headers[http.CanonicalHeaderKey("Content-Type")]
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
