package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Fetch(t *testing.T) {
	var gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	s := NewHTTPSource()
	s.HTTPClient = srv.Client()
	s.Token = "tok"

	t.Run("token withheld from other hosts", func(t *testing.T) {
		body, err := s.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "[1,2]", string(body))
		assert.Contains(t, gotUA, "tremstore/")
		assert.Empty(t, gotAuth)
	})

	t.Run("token sent to auth host", func(t *testing.T) {
		s.AuthHost = u.Hostname()
		_, err := s.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", gotAuth)
	})

	t.Run("non-2xx", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), srv.URL+"/missing")
		var se *HTTPStatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
		assert.True(t, IsNotFound(err))
		assert.Contains(t, se.Error(), "404 Not Found")
	})

	t.Run("body over limit", func(t *testing.T) {
		limited := NewHTTPSource()
		limited.HTTPClient = srv.Client()
		limited.MaxBodyBytes = 4
		_, err := limited.Fetch(context.Background(), srv.URL+"/ok")
		require.ErrorIs(t, err, ErrBodyTooLarge)

		limited.MaxBodyBytes = 5
		body, err := limited.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "[1,2]", string(body))
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := s.Fetch(context.Background(), "://nope")
		require.Error(t, err)
	})
}
