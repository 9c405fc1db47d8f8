package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientListMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "s1", r.URL.Query().Get("session"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":1,"session_id":"s1","message":"привет","read_by_user":true}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	msgs, err := c.ListMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "привет", msgs[0].Body)
	assert.True(t, msgs[0].ReadByUser)
}

func TestClientSendsAdminToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"tickets":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.ListTickets(context.Background(), "")
	require.NoError(t, err)
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"too large", http.StatusRequestEntityTooLarge, ErrPayloadTooLarge},
		{"unsupported", http.StatusUnsupportedMediaType, ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "")
			_, err := c.CreateTicket(context.Background(), "s1", "100", "Ivan")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClientWrapsServerFailureAsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ListTickets(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestClientConnectionErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ListMessages(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestClientUploadRejectsBadFilesWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")

	_, err := c.UploadMedia(context.Background(), "huge.png", 6*1024*1024, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	_, err = c.UploadMedia(context.Background(), "scan.pdf", 11*1024*1024, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	_, err = c.UploadMedia(context.Background(), "notes.txt", 10, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Equal(t, int32(0), hits.Load(), "invalid uploads must not reach the server")
}

func TestClientUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "receipt.png", header.Filename)
		w.Write([]byte(`{"url":"https://cdn.example/receipt.png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	url, err := c.UploadMedia(context.Background(), "receipt.png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/receipt.png", url)
}

func TestClientMarkReadAndUnreadCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/messages/read":
			assert.Equal(t, "true", r.URL.Query().Get("as_staff"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/messages/unread-count":
			w.Write([]byte(`{"count":7}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	require.NoError(t, c.MarkRead(context.Background(), "s1", true))
	n, err := c.UnreadCount(context.Background(), "s1", false)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
