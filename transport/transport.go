// Package transport issues the HTTP requests behind the service facades and
// maps raw responses to decoded payloads or typed errors.
package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/surveykit/surveykit/models"
	"github.com/surveykit/surveykit/models/enums"
)

// Transport sends a single HTTP request and returns the status and body as-is.
// A failed attempt is surfaced to the caller immediately - no retries
type Transport struct {
	client *http.Client
	logger *zap.Logger
}

// New returns a transport configured with the timeouts and logger from the
// provided config. Zero timeouts keep the net/http defaults
func New(config *models.Config) *Transport {
	client := &http.Client{
		Timeout: config.ReadTimeout,
	}

	if config.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: config.ConnectTimeout}
		client.Transport = &http.Transport{DialContext: dialer.DialContext}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{
		client: client,
		logger: logger,
	}
}

// Send performs a single request against the given URL. For standard mode,
// params travel in the query string for GETs and as a form-urlencoded body
// otherwise. For multipart mode, params are encoded as multipart form fields
func (t *Transport) Send(ctx context.Context, rawurl, method string, params url.Values, mode enums.RequestMode) (int, []byte, error) {
	return t.SendWithHeaders(ctx, rawurl, method, params, mode, nil)
}

// SendWithHeaders behaves like Send, with extra headers applied to the request
func (t *Transport) SendWithHeaders(ctx context.Context, rawurl, method string, params url.Values, mode enums.RequestMode, headers http.Header) (int, []byte, error) {
	var body io.Reader
	contentType := ""

	switch mode {
	case enums.RequestModeStandard:
		if method == http.MethodGet || method == http.MethodHead {
			if len(params) > 0 {
				rawurl = appendQuery(rawurl, params)
			}
		} else {
			body = strings.NewReader(params.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	case enums.RequestModeMultipart:
		encoded, boundary, err := encodeMultipart(params)
		if err != nil {
			return 0, nil, err
		}
		body = encoded
		contentType = boundary
	default:
		return 0, nil, errors.Errorf("unknown request mode %v given to Send, must be standard or multipart", int(mode))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "building request")
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	// this is where the work happens
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, &TransportError{URL: rawurl, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{URL: rawurl, Err: err}
	}

	t.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("url", rawurl),
		zap.Int("status", resp.StatusCode),
		zap.Int("bodyBytes", len(respBody)))

	return resp.StatusCode, respBody, nil
}

func appendQuery(rawurl string, params url.Values) string {
	separator := "?"
	if strings.Contains(rawurl, "?") {
		separator = "&"
	}

	return rawurl + separator + params.Encode()
}

func encodeMultipart(params url.Values) (io.Reader, string, error) {
	buffer := new(bytes.Buffer)
	writer := multipart.NewWriter(buffer)

	for key, values := range params {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", errors.Wrap(err, "encoding multipart field")
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}

	return buffer, writer.FormDataContentType(), nil
}
