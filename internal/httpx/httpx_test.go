package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "task not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"detail":"task not found"}`, rec.Body.String())
}

func TestMsg(t *testing.T) {
	rec := httptest.NewRecorder()
	Msg(rec, "deleted")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"msg":"deleted"}`, rec.Body.String())
}
