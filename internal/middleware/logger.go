package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/kickslab/backend/pkg/errorx"
	"github.com/kickslab/backend/pkg/router"
	"github.com/kickslab/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context, info router.RequestInfo) {
		line := fmt.Sprintf("%s | %s", info.Method, info.Path)
		if info.Err != nil {
			var errx errorx.Error
			if errors.As(info.Err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", line, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", line, -1)
			}
		} else {
			xcontext.Logger(ctx).Infof(line)
		}
	}
}
