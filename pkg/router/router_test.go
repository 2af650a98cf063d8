package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/luckydraw/pkg/errorx"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name" form:"name"`
	Limit int    `json:"limit" form:"limit"`
}

type echoResponse struct {
	Name   string `json:"name"`
	Limit  int    `json:"limit"`
	UserID string `json:"user_id"`
}

type envelope struct {
	Code  int64         `json:"code"`
	Error string        `json:"error"`
	Data  *echoResponse `json:"data"`
}

type baseKey struct{}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "fail" {
		return nil, errorx.New(errorx.NotFound, "Not found %s", req.Name)
	}

	if req.Name == "panic" {
		return nil, errors.New("database is down")
	}

	userID, _ := ctx.Value(baseKey{}).(string)
	if id := xcontext.RequestUserID(ctx); id != "" {
		userID = id
	}

	return &echoResponse{Name: req.Name, Limit: req.Limit, UserID: userID}, nil
}

func serve(t *testing.T, h http.Handler, req *http.Request) (int, envelope) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRouter(t *testing.T) {
	r := New(context.WithValue(context.Background(), baseKey{}, "from-base"))

	var closed []error
	r.After(func(ctx context.Context) {
		closed = append(closed, xcontext.Error(ctx))
	})

	GET(r, "/echo", echo)
	POST(r, "/echo", echo)

	private := r.Group("/private")
	private.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return xcontext.WithRequestUserID(ctx, "user1"), nil
	})
	GET(private, "/echo", echo)

	h := r.Handler([]string{"*"})

	t.Run("query binding", func(t *testing.T) {
		code, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/echo?name=a&limit=3", nil))
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, int64(0), body.Code)
		require.Equal(t, &echoResponse{Name: "a", Limit: 3, UserID: "from-base"}, body.Data)
	})

	t.Run("json binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"b","limit":5}`))
		req.Header.Set("Content-Type", "application/json")
		code, body := serve(t, h, req)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "b", body.Data.Name)
		require.Equal(t, 5, body.Data.Limit)
	})

	t.Run("empty body", func(t *testing.T) {
		code, body := serve(t, h, httptest.NewRequest(http.MethodPost, "/echo", nil))
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "", body.Data.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		code, body := serve(t, h, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`)))
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, int64(errorx.BadRequest), body.Code)
	})

	t.Run("errorx error", func(t *testing.T) {
		code, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/echo?name=fail", nil))
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, int64(errorx.NotFound), body.Code)
		require.Equal(t, "Not found fail", body.Error)
		require.Nil(t, body.Data)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		code, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/echo?name=panic", nil))
		require.Equal(t, http.StatusInternalServerError, code)
		require.Equal(t, int64(errorx.Unknown.Code), body.Code)
		require.Equal(t, errorx.Unknown.Message, body.Error)
	})

	t.Run("middleware", func(t *testing.T) {
		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/private/echo", nil))
		require.Equal(t, int64(errorx.Unauthenticated), body.Code)

		req := httptest.NewRequest(http.MethodGet, "/private/echo?name=c", nil)
		req.Header.Set("Authorization", "Bearer x")
		_, body = serve(t, h, req)
		require.Equal(t, int64(0), body.Code)
		require.Equal(t, "user1", body.Data.UserID)
	})

	// Middlewares of a group never leak to the parent router.
	_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/echo?name=d", nil))
	require.Equal(t, int64(0), body.Code)

	require.Len(t, closed, 9)
	require.NoError(t, closed[0])
	require.ErrorIs(t, closed[4], errorx.New(errorx.NotFound, ""))
}
