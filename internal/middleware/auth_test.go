package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardiland/ardilandcom/internal/auth"
	"github.com/ardiland/ardilandcom/internal/middleware"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	validSession := &auth.Session{
		ID:        "session-id",
		Token:     "valid-token",
		UserID:    "user-id",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	testCases := []struct {
		name               string
		method             string
		authHeader         string
		expectLookup       bool
		mockSession        *auth.Session
		mockErr            error
		expectedStatusCode int
		expectedError      string
		expectedMessage    string
	}{
		{
			name:               "MissingHeader",
			method:             http.MethodGet,
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
			expectedMessage:    "No token provided",
		},
		{
			name:               "WrongScheme",
			method:             http.MethodGet,
			authHeader:         "Basic dXNlcjpwYXNz",
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
			expectedMessage:    "No token provided",
		},
		{
			name:               "LowercaseScheme",
			method:             http.MethodGet,
			authHeader:         "bearer valid-token",
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
			expectedMessage:    "No token provided",
		},
		{
			name:               "EmptyToken",
			method:             http.MethodDelete,
			authHeader:         "Bearer ",
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
			expectedMessage:    "No token provided",
		},
		{
			name:               "ValidToken",
			method:             http.MethodGet,
			authHeader:         "Bearer valid-token",
			expectLookup:       true,
			mockSession:        validSession,
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "UnknownOrExpiredToken",
			method:             http.MethodPost,
			authHeader:         "Bearer stale-token",
			expectLookup:       true,
			mockErr:            auth.ErrSessionNotFound,
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
			expectedMessage:    "Invalid or expired token",
		},
		{
			name:               "StoreFailure",
			method:             http.MethodPut,
			authHeader:         "Bearer valid-token",
			expectLookup:       true,
			mockErr:            errors.New("connection refused"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "Internal server error",
			expectedMessage:    "Authentication check failed",
		},
		{
			name:               "Preflight",
			method:             http.MethodOptions,
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockValidator := NewMocksessionValidator(ctrl)
			if tc.expectLookup {
				token, ok := pkg.BearerToken(&http.Request{Header: http.Header{"Authorization": {tc.authHeader}}})
				require.True(t, ok)
				mockValidator.EXPECT().
					ValidateSession(gomock.Any(), token).
					Return(tc.mockSession, tc.mockErr).
					Times(1)
			}
			authMiddleware := middleware.NewAuthMiddlewareHandler(mockValidator)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tc.method, "/api/admin/products", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()
			authMiddleware.AuthCheck()(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedError == "" {
				assert.True(t, nextCalled)
				return
			}

			assert.False(t, nextCalled, "downstream handler must not run")
			var resp pkg.ApiResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tc.expectedError, resp.Error)
			assert.Equal(t, tc.expectedMessage, resp.Message)
		})
	}
}
