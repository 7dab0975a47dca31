package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		url           string
		body          string
		expectedError string
	}{
		{
			name:          "with body",
			statusCode:    404,
			url:           "http://example.com/launches",
			body:          "Not Found",
			expectedError: "HTTP 404 for URL http://example.com/launches: Not Found",
		},
		{
			name:          "empty body",
			statusCode:    503,
			url:           "http://example.com",
			body:          "",
			expectedError: "HTTP 503 for URL http://example.com: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewHTTPError(tt.statusCode, tt.url, tt.body)
			assert.Equal(t, tt.statusCode, err.StatusCode)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}
