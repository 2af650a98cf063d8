package common

import (
	"context"

	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

// Limit clamps a requested page size to the configured bounds. Zero means the
// default size.
func Limit(ctx context.Context, limit int) int {
	cfg := xcontext.Configs(ctx).ApiServer
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}

	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	return limit
}
