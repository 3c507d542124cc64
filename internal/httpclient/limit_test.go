package httpclient

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllWithLimit(t *testing.T) {
	got, err := ReadAllWithLimit(bytes.NewReader([]byte("hello")), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = ReadAllWithLimit(bytes.NewReader([]byte("hello")), 2)
	require.Error(t, err)
	assert.True(t, IsResponseTooLarge(err))
	assert.ErrorIs(t, fmt.Errorf("read body: %w", err), ErrResponseTooLarge)
	assert.Contains(t, err.Error(), "2 bytes")
}

func TestReadAllWithLimitDefaultsWhenUnset(t *testing.T) {
	payload := strings.Repeat("x", 1024)
	got, err := ReadAllWithLimit(strings.NewReader(payload), 0)
	require.NoError(t, err)
	assert.Len(t, got, 1024)
}

func TestNewClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := New(0, nil)
	assert.Equal(t, DefaultTimeout, client.Timeout)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	assert.Equal(t, 5*time.Second, New(5*time.Second, nil).Timeout)
}
