package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/newthinker/pricefeed/internal/core"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 16 << 20

// Response is a fully read upstream reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Get performs one GET and reads the whole body. Network failures, unreadable
// bodies and bodies over maxBodyBytes come back as core.ErrTransport.
func Get(ctx context.Context, client HTTPClient, rawURL string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrTransport, redactQuery(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, core.WrapError(core.ErrTransport, fmt.Errorf("reading body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, core.WrapError(core.ErrTransport,
			fmt.Errorf("response body exceeds %d bytes", maxBodyBytes))
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// StatusError reports a non-2xx reply as a retryable transport error.
func StatusError(status int) error {
	return core.WrapError(core.ErrTransport, fmt.Errorf("unexpected status: %d", status))
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// redactQuery drops the query string from a *url.Error so credentials passed
// as query parameters never reach logs.
func redactQuery(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			ue.URL = u.String()
		}
	}
	return err
}
