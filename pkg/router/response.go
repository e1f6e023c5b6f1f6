package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.BadRequest, errorx.AlreadyExists, errorx.Unavailable:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(ctx context.Context, w http.ResponseWriter, data any, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		errx := errorx.Error{}
		if !errors.As(err, &errx) {
			errx = errorx.Unknown
		}

		w.WriteHeader(httpStatus(errx.Code))
		writeJSON(ctx, w, response{Code: int64(errx.Code), Error: errx.Message})
		return
	}

	writeJSON(ctx, w, response{Code: 0, Data: data})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, resp response) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
