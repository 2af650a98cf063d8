package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. Returning an error stops the
// request and the error is sent to the client.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written, even if a middleware or
// the handler failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine  *gin.Engine
	inner   gin.IRouter
	baseCtx context.Context

	befores []MiddlewareFunc
	afters  []CloserFunc
}

// New returns a router whose handlers see every value stored in ctx, such as
// configs, logger and database.
func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	return &Router{
		engine:  engine,
		inner:   engine,
		baseCtx: ctx,
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(c CloserFunc) {
	r.afters = append(r.afters, c)
}

// Branch returns a router sharing the routes of r. Middlewares added to the
// branch do not affect r.
func (r *Router) Branch() *Router {
	return &Router{
		engine:  r.engine,
		inner:   r.inner,
		baseCtx: r.baseCtx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]CloserFunc{}, r.afters...),
	}
}

func (r *Router) Group(pattern string) *Router {
	branch := r.Branch()
	branch.inner = r.inner.Group(pattern)
	return branch
}

// Static serves a raw http handler without the json envelope.
func (r *Router) Static(method, pattern string, h http.Handler) {
	r.inner.Handle(method, pattern, gin.WrapH(h))
}

func (r *Router) Handler(allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores := r.befores
	afters := r.afters

	return func(c *gin.Context) {
		var ctx context.Context = valueContext{Context: c.Request.Context(), base: r.baseCtx}
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)

		defer func() {
			for _, closer := range afters {
				closer(ctx)
			}
		}()

		resp, err := func() (*Response, error) {
			for _, m := range befores {
				next, err := m(ctx)
				if err != nil {
					return nil, err
				}

				if next != nil {
					ctx = next
				}
			}

			var err error

			var req Request
			switch method {
			case http.MethodGet:
				err = c.ShouldBindQuery(&req)
			default:
				err = c.ShouldBindJSON(&req)
				if errors.Is(err, io.EOF) {
					err = nil
				}
			}
			if err != nil {
				return nil, errorx.New(errorx.BadRequest, "Invalid request: %v", err)
			}

			return handler(ctx, &req)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			status, body := newErrorResponse(err)
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, newResponse(resp))
	}
}

// valueContext carries the cancellation of the request and falls back to the
// base context for values.
type valueContext struct {
	context.Context
	base context.Context
}

func (c valueContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.base.Value(key)
}
