package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, map[string]string{"key": "weather-data/weather-data.zip"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Equal(t, code.Success, resp.Code)
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{e.New(code.NotFound, "Dataset not found", nil), http.StatusNotFound, code.NotFound},
		{e.New(code.FetchError, "HTTP 500", nil), http.StatusNotFound, code.FetchError},
		{e.New(code.NotAuthorized, "Unauthorized to read dataset x", nil), http.StatusUnauthorized, code.NotAuthorized},
		{e.New(code.StorageError, "put k", errors.New("denied")), http.StatusBadGateway, code.StorageError},
		{fmt.Errorf("save: %w", e.New(code.ValidationError, "bad", nil)), http.StatusBadRequest, code.ValidationError},
		{errors.New("boom"), http.StatusInternalServerError, code.ServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		response.Error(rec, c.err)
		assert.Equal(t, c.status, rec.Code, c.err.Error())
		assert.Equal(t, c.code, decode(t, rec).Code)
	}
}
