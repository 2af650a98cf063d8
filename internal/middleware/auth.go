package middleware

import (
	"context"
	"strings"

	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/pkg/authenticator"
	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/router"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

const bearerPrefix = "Bearer "

type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// Middleware reads the access token from the Authorization header, or from the
// access token cookie, and stores the caller in the context.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := a.token(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := a.tokenEngine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid or expired access token")
		}

		if info.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		ctx = xcontext.WithRequestUserID(ctx, info.ID)
		ctx = xcontext.WithRequestUserRole(ctx, info.Role)
		return ctx, nil
	}
}

func (a *AuthVerifier) token(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	if auth := req.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// OnlyService rejects callers which are not trusted services, such as the ads
// or task systems crediting points.
func OnlyService() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserRole(ctx) != model.RoleService {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return ctx, nil
	}
}
