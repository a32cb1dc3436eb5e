package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title string `json:"title" validate:"required,max=10"`
}

type selfValidating struct {
	OK bool `json:"ok"`
}

func (s selfValidating) Validate() error {
	if !s.OK {
		return assert.AnError
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"title":"write docs"}`},
		{name: "trailing comma", body: `{"title":"x",}`, wantErr: true},
		{name: "unknown field", body: `{"title":"x","extra":1}`, wantErr: true},
		{name: "two objects", body: `{"title":"x"}{"title":"y"}`, wantErr: true},
		{name: "empty body", body: "", wantErr: true, isEmpty: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got sampleRequest
			err := DecodeJSON(req, &got)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "write docs", got.Title)
				return
			}
			require.Error(t, err)
			if tt.isEmpty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(sampleRequest{Title: "ok"}))
	assert.Error(t, ValidateRequest(sampleRequest{}))
	assert.Error(t, ValidateRequest(sampleRequest{Title: "far too long a title"}))

	assert.NoError(t, ValidateRequest(selfValidating{OK: true}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{}), assert.AnError)
}
