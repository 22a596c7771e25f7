package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/newthinker/pricefeed/internal/collector/mocks"
	"github.com/newthinker/pricefeed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGet_SetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "k", r.Header.Get("X-Cg-Demo-Api-Key"))
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"status":{"error_code":429}}`)
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("x-cg-demo-api-key", "k")

	resp, err := Get(context.Background(), srv.Client(), srv.URL, header)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.Equal(t, "3", resp.Header.Get("Retry-After"))
	assert.JSONEq(t, `{"status":{"error_code":429}}`, string(resp.Body))
}

func TestGet_TransportErrorRedactsQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockHTTPClient(ctrl)
	client.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: errors.New("connection reset")}
		})

	_, err := Get(context.Background(), client, "https://api.example.com/quote?symbol=AAPL&apikey=s3cr3t", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTransport))
	assert.NotContains(t, err.Error(), "s3cr3t")
	assert.Contains(t, err.Error(), "https://api.example.com/quote")
}

// zeroReader yields an endless stream of zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestGet_BodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"at limit", maxBodyBytes, false},
		{"over limit", maxBodyBytes + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockHTTPClient(ctrl)
			client.EXPECT().Do(gomock.Any()).Return(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(io.LimitReader(zeroReader{}, tt.size)),
			}, nil)

			resp, err := Get(context.Background(), client, "https://api.example.com/markets", nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrTransport))
				assert.Contains(t, err.Error(), "exceeds")
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Body, maxBodyBytes)
		})
	}
}

func TestStatusError(t *testing.T) {
	err := StatusError(http.StatusBadGateway)
	assert.True(t, errors.Is(err, core.ErrTransport))
	assert.Contains(t, err.Error(), "502")
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(204))
	assert.False(t, IsSuccess(199))
	assert.False(t, IsSuccess(301))
	assert.False(t, IsSuccess(429))
}
