package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"countries/pkg/logger"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error {
	return f.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/health", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "ready", path: "/ready", wantStatus: http.StatusOK, wantBody: `{"status":"ready","database":"ok"}`},
		{
			name:       "not ready when mongo is down",
			path:       "/ready",
			pingErr:    errors.New("server selection timeout"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","database":"error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(fakePinger{err: tt.pingErr}, logger.Discard()).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
