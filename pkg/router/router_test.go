package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kickslab/backend/config"
	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

type echoResponse struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

func newTestRouter() *Router {
	return New(nil, config.Configs{}, logger.NewLogger(logger.SILENCE))
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	return &echoResponse{Name: req.Name, Limit: req.Limit}, nil
}

func Test_Router_BindQuery(t *testing.T) {
	r := newTestRouter()
	GET(r, "/echo", echo)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "/echo?name=jordan&limit=3", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int64        `json:"code"`
		Data echoResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "jordan", resp.Data.Name)
	require.Equal(t, 3, resp.Data.Limit)
}

func Test_Router_BindBody(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(
		http.MethodPost, "/echo", strings.NewReader(`{"name":"jordan","limit":7}`)))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data echoResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "jordan", resp.Data.Name)
	require.Equal(t, 7, resp.Data.Limit)

	// An empty body binds the zero request instead of failing.
	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func Test_Router_MethodMismatch(t *testing.T) {
	r := newTestRouter()
	POST(r, "/echo", echo)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Router_ErrorEnvelope(t *testing.T) {
	r := newTestRouter()
	GET(r, "/denied", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	})
	GET(r, "/broken", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errors.New("internal detail that must not leak")
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/denied", nil))
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, int64(errorx.PermissionDenied), resp.Code)
	require.Equal(t, "Permission denied", resp.Error)

	// Unexpected errors collapse into the generic failure message.
	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, errorx.Unknown.Message, resp.Error)
}

func Test_Router_BranchMiddleware(t *testing.T) {
	r := newTestRouter()
	GET(r, "/public", echo)

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})
	GET(branch, "/private", echo)

	// The branch middleware does not leak into the parent router.
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
