package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/albumkit/internal/handlers"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

	grants := store.NewGrantMemoryStore()
	fetcher := &fileFetcher{dir: t.TempDir(), payload: []byte("png-bytes")}
	saver := imagesaver.New(fetcher, &fakePersister{}, zap.NewNop(), imagesaver.Messages{})

	handlers.RegisterRoutes(api,
		handlers.NewImageHandler(saver, fetcher, grants, noopPublish[host.NotificationEvent](), noopPublish[host.ImageSavedEvent](), zap.NewNop()),
		handlers.NewGrantHandler(grants, zap.NewNop()),
	)

	return router
}

func TestRoutes(t *testing.T) {
	t.Run("save requires the session header", func(t *testing.T) {
		router := newRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/images/save",
			strings.NewReader(`{"url":"https://cdn.example.com/a.png","consent":{}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Platform", "mp-weixin")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("save runs end to end", func(t *testing.T) {
		router := newRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/images/save",
			strings.NewReader(`{"url":"https://cdn.example.com/a.png","consent":{"authorize":true}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Session-ID", "s1")
		req.Header.Set("X-Platform", "mp-weixin")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"stage":"done"`)
	})

	t.Run("grant scope is validated", func(t *testing.T) {
		router := newRouter(t)

		req := httptest.NewRequest(http.MethodPut, "/sessions/s1/grants/scope.camera",
			strings.NewReader(`{"granted":true}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("grant round trip", func(t *testing.T) {
		router := newRouter(t)

		put := httptest.NewRequest(http.MethodPut, "/sessions/s1/grants/scope.writePhotosAlbum",
			strings.NewReader(`{"granted":false}`))
		put.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(httptest.NewRecorder(), put)

		get := httptest.NewRequest(http.MethodGet, "/sessions/s1/grants", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, get)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"scope.writePhotosAlbum":false`)
	})
}
