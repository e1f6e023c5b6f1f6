package router

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"

	"github.com/kickslab/backend/pkg/errorx"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := router.newRequestContext(r, w)

		var err error
		var resp any
		func() {
			if r.Method != method {
				err = errorx.New(errorx.BadRequest, "Not supported method %s", r.Method)
				return
			}

			var req Request
			switch method {
			case http.MethodGet:
				err = bindQuery(r, &req)
			case http.MethodPost:
				err = bindBody(r, &req)
			}
			if err != nil {
				err = errorx.New(errorx.BadRequest, "Cannot bind the request")
				return
			}

			for _, m := range router.befores {
				ctx, err = m(ctx)
				if err != nil {
					return
				}
			}

			resp, err = handler(ctx, &req)
		}()

		writeResponse(ctx, w, resp, err)

		for _, closer := range router.closers {
			closer(ctx, RequestInfo{Method: r.Method, Path: r.URL.Path, Err: err})
		}
	}
}

func bindBody(r *http.Request, req any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	return json.NewDecoder(r.Body).Decode(req)
}

// bindQuery fills req from URL query parameters using json tags. Only flat
// string, bool, and integer fields are supported, which covers every GET
// request model in this repo.
func bindQuery(r *http.Request, req any) error {
	values := r.URL.Query()
	v := reflect.ValueOf(req).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("json")
		if name == "" || name == "-" {
			continue
		}

		param := values.Get(name)
		if param == "" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(param)
		case reflect.Bool:
			b, err := strconv.ParseBool(param)
			if err != nil {
				return err
			}
			field.SetBool(b)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(param, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(n)
		case reflect.Uint, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(param, 10, 64)
			if err != nil {
				return err
			}
			field.SetUint(n)
		}
	}

	return nil
}
