package clients

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"cover-manager/core/retry"

	"github.com/segmentio/encoding/json"
)

// maxErrorBody caps how much of a failed response body is read.
const maxErrorBody = 64 << 10

// NewHTTPClient creates the client used for outbound calls.
func NewHTTPClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

// BaseURL returns u with a trailing slash.
func BaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// Do sends req and converts transport failures and non-2xx answers into
// errors. On success the caller owns the response body.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	if err := CheckResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CheckResponse returns nil for 2xx responses. Any other response is read,
// closed and returned as a *retry.StatusError.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	statusErr := &retry.StatusError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
	if code, msg, ok := parseErrorList(body); ok {
		statusErr.Code = code
		if msg != "" {
			statusErr.Message = msg
		}
	}
	return statusErr
}

type errorEntry struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// parseErrorList reads the first entry of an {"errorList":{"error":...}}
// payload. The error member may be a single object or a list.
func parseErrorList(body []byte) (string, string, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return "", "", false
	}

	var payload struct {
		ErrorList struct {
			Error json.RawMessage `json:"error"`
		} `json:"errorList"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", false
	}

	raw := bytes.TrimSpace(payload.ErrorList.Error)
	if len(raw) == 0 {
		return "", "", false
	}

	var entries []errorEntry
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &entries); err != nil {
			return "", "", false
		}
	case '{':
		var single errorEntry
		if err := json.Unmarshal(raw, &single); err != nil {
			return "", "", false
		}
		entries = append(entries, single)
	}

	if len(entries) == 0 {
		return "", "", false
	}
	return entries[0].ErrorCode, entries[0].ErrorMessage, true
}
