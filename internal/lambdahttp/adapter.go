// Package lambdahttp serves API Gateway events through an http.Handler so the
// same routes run on a long-lived server and on AWS Lambda.
package lambdahttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Adapter converts API Gateway requests to http.Requests.
type Adapter struct {
	handler http.Handler
}

// New creates an adapter around h.
func New(h http.Handler) *Adapter {
	return &Adapter{handler: h}
}

// ProxyV2 handles HTTP API (payload format 2.0) events.
func (a *Adapter) ProxyV2(ctx context.Context, e events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := decodeBody(e.Body, e.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	path := e.RawPath
	if path == "" {
		path = e.RequestContext.HTTP.Path
	}
	path = stripStage(path, e.RequestContext.Stage)

	req, err := newRequest(ctx, e.RequestContext.HTTP.Method, path, e.RawQueryString, body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
	if len(e.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(e.Cookies, "; "))
	}
	req.RemoteAddr = e.RequestContext.HTTP.SourceIP

	rw := newResponseWriter()
	a.handler.ServeHTTP(rw, req)

	respBody, isBase64 := rw.encodedBody()
	return events.APIGatewayV2HTTPResponse{
		StatusCode:      rw.status,
		Headers:         flattenHeaders(rw.header),
		Cookies:         rw.header.Values("Set-Cookie"),
		Body:            respBody,
		IsBase64Encoded: isBase64,
	}, nil
}

// Proxy handles REST API (payload format 1.0) events.
func (a *Adapter) Proxy(ctx context.Context, e events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := decodeBody(e.Body, e.IsBase64Encoded)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	query := url.Values{}
	for k, vs := range e.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range e.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	req, err := newRequest(ctx, e.HTTPMethod, e.Path, query.Encode(), body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	for k, vs := range e.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range e.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	req.RemoteAddr = e.RequestContext.Identity.SourceIP

	rw := newResponseWriter()
	a.handler.ServeHTTP(rw, req)

	respBody, isBase64 := rw.encodedBody()
	return events.APIGatewayProxyResponse{
		StatusCode:        rw.status,
		Headers:           flattenHeaders(rw.header),
		MultiValueHeaders: map[string][]string(rw.header),
		Body:              respBody,
		IsBase64Encoded:   isBase64,
	}, nil
}

// stripStage removes the stage prefix API Gateway adds to paths on named
// stages. The $default stage adds none.
func stripStage(path, stage string) string {
	if stage == "" || stage == "$default" {
		return path
	}
	prefix := "/" + stage
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 body: %w", err)
	}
	return b, nil
}

func newRequest(ctx context.Context, method, path, rawQuery string, body []byte) (*http.Request, error) {
	u := &url.URL{Path: path, RawQuery: rawQuery}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.RequestURI = u.RequestURI()
	return req, nil
}

// flattenHeaders joins repeated headers with commas. Set-Cookie is carried
// separately.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if k == "Set-Cookie" {
			continue
		}
		out[k] = strings.Join(vs, ",")
	}
	return out
}

// responseWriter buffers a handler's response.
type responseWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}, status: http.StatusOK}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

// encodedBody returns the body as text, or base64 for binary content types.
func (w *responseWriter) encodedBody() (string, bool) {
	if w.body.Len() == 0 {
		return "", false
	}
	ct := w.header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(w.body.Bytes())
		w.header.Set("Content-Type", ct)
	}
	if isText(ct) {
		return w.body.String(), false
	}
	return base64.StdEncoding.EncodeToString(w.body.Bytes()), true
}

func isText(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml") ||
		strings.Contains(ct, "javascript")
}
