package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resuai/internal/intake"
	"github.com/jonathan/resuai/internal/types"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		header  string
		want    int64
		wantErr bool
	}{
		{header: "3", want: 3},
		{header: `"3"`, want: 3},
		{header: `W/"12"`, want: 12},
		{header: " 0 ", want: 0},
		{header: "", wantErr: true},
		{header: "abc", wantErr: true},
		{header: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", nil)
			if tt.header != "" {
				req.Header.Set("If-Match", tt.header)
			}
			got, err := parseVersion(req)
			if tt.wantErr {
				var validation *ErrValidation
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "If-Match", validation.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetVersion(t *testing.T) {
	w := httptest.NewRecorder()
	setVersion(w, 7)
	assert.Equal(t, `"7"`, w.Header().Get("ETag"))
}

func TestDecodeBody(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var req types.ChatRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"hi"}`))
		require.NoError(t, decodeBody(httptest.NewRecorder(), r, &req))
		assert.Equal(t, "hi", req.Prompt)
	})

	t.Run("too large", func(t *testing.T) {
		var req types.ChatRequest
		body := `{"prompt":"` + strings.Repeat("a", maxJSONBody) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := decodeBody(httptest.NewRecorder(), r, &req)

		var fileErr *intake.FileError
		require.ErrorAs(t, err, &fileErr)
		assert.Equal(t, intake.ReasonTooLarge, fileErr.Reason)
		assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(err))
	})
}

func TestDecodeJSON_Validates(t *testing.T) {
	s := newTestEnv(t).server

	var req types.ChatRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"`+strings.Repeat("a", 4001)+`"}`))
	err := s.decodeJSON(httptest.NewRecorder(), r, &req)

	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Prompt", validation.Field)
	assert.Equal(t, "max", validation.Message)
}
