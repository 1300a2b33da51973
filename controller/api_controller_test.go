package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, svc *githubServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	toolController, _ := newTestToolController(t, svc)
	return NewRouter(NewAPIController(toolController))
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &githubServiceMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListTools(t *testing.T) {
	router := newTestRouter(t, &githubServiceMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var tools []ToolDefinition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tools))
	assert.Len(t, tools, len(Definitions()))
	assert.Equal(t, ToolGetRepositories, tools[0].Name)
}

func TestCallToolStatusCodes(t *testing.T) {
	tests := []struct {
		name           string
		tool           string
		body           string
		setup          func(svc *githubServiceMock)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success without body",
			tool: ToolGetRepositoryStats,
			setup: func(svc *githubServiceMock) {
				svc.On("GetRepositoryStats", mock.Anything, true).Return(model.StatsSnapshot{TotalRepositories: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Success with arguments",
			tool: ToolGetRepositoryStats,
			body: `{"use_cache": false}`,
			setup: func(svc *githubServiceMock) {
				svc.On("GetRepositoryStats", mock.Anything, false).Return(model.StatsSnapshot{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed body",
			tool:           ToolGetRepositoryStats,
			body:           `[1, 2`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ARGUMENT",
		},
		{
			name:           "Missing required argument",
			tool:           ToolGetRepositoryDetails,
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ARGUMENT",
		},
		{
			name:           "Unknown tool",
			tool:           "nope",
			expectedStatus: http.StatusNotFound,
			expectedCode:   "UNKNOWN_TOOL",
		},
		{
			name: "Authentication failure",
			tool: ToolGetRateLimit,
			setup: func(svc *githubServiceMock) {
				svc.On("GetRateLimit", mock.Anything).
					Return(model.RateLimitStatus{}, model.NewUpstreamError(model.KindAuthentication, 401, errors.New("Bad credentials")))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "AUTHENTICATION_ERROR",
		},
		{
			name: "Rate limit",
			tool: ToolGetContributionActivity,
			setup: func(svc *githubServiceMock) {
				svc.On("GetContributionActivity", mock.Anything, true).
					Return(model.ActivitySnapshot{}, model.NewUpstreamError(model.KindRateLimit, 403, errors.New("limit")))
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name: "Unclassified failure",
			tool: ToolGetContributionCalendar,
			setup: func(svc *githubServiceMock) {
				svc.On("GetContributionCalendar", mock.Anything, true).
					Return(model.ContributionCalendar{}, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "FETCH_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &githubServiceMock{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			router := newTestRouter(t, svc)

			req := httptest.NewRequest(http.MethodPost, "/tools/"+tt.tool, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var envelope model.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Timestamp)

			if tt.expectedCode == "" {
				assert.True(t, envelope.Success)
				return
			}

			assert.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.expectedCode, envelope.Error.Code)
		})
	}
}
