package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topup-desk/support-service/internal/model"
)

func newVisitorRouter(svc *fakeVisitorService) *gin.Engine {
	h := NewVisitorHandler(svc)
	r := gin.New()
	r.POST("/visitors", h.Track)
	r.GET("/visitors", h.ListOnline)
	return r
}

func TestVisitorTrack(t *testing.T) {
	var gotSession, gotPage string
	svc := &fakeVisitorService{
		trackFn: func(_ context.Context, sessionID, page string) error {
			gotSession, gotPage = sessionID, page
			return nil
		},
	}
	r := newVisitorRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/visitors", strings.NewReader(`{"session":"s1","page":"/topup"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", gotSession)
	assert.Equal(t, "/topup", gotPage)
}

func TestVisitorTrackRequiresSession(t *testing.T) {
	r := newVisitorRouter(&fakeVisitorService{})

	req := httptest.NewRequest(http.MethodPost, "/visitors", strings.NewReader(`{"page":"/topup"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisitorListOnline(t *testing.T) {
	svc := &fakeVisitorService{
		listFn: func(_ context.Context, window time.Duration) ([]model.Visitor, error) {
			assert.Equal(t, 10*time.Minute, window)
			return []model.Visitor{{SessionID: "s1"}, {SessionID: "s2"}}, nil
		},
	}
	r := newVisitorRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/visitors?minutes=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online":2`)
}

func TestVisitorListOnlineDefaultWindow(t *testing.T) {
	svc := &fakeVisitorService{
		listFn: func(_ context.Context, window time.Duration) ([]model.Visitor, error) {
			assert.Equal(t, defaultOnlineWindow, window)
			return nil, nil
		},
	}
	r := newVisitorRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/visitors?minutes=abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
