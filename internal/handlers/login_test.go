package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-library/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockLoginer)
		expectedCode int
		expectedBody string
	}{
		{
			name: "success",
			body: `{"email":"john@example.com","password":"secret"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret").Return("jwt-token", "john", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"token":"jwt-token","username":"john"}`,
		},
		{
			name: "username is ignored",
			body: `{"username":"someone-else","email":"john@example.com","password":"secret"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret").Return("jwt-token", "john", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"success":true,"token":"jwt-token","username":"john"}`,
		},
		{
			name: "invalid credentials",
			body: `{"email":"john@example.com","password":"wrong"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "wrong").Return("", "", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"success":false,"message":"Invalid email or password"}`,
		},
		{
			name: "storage error",
			body: `{"email":"john@example.com","password":"secret"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john@example.com", "secret").Return("", "", errors.New("connection refused"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"success":false,"message":"Internal server error"}`,
		},
		{
			name:         "invalid json",
			body:         `{invalid json}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"success":false,"message":"Invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			rr := httptest.NewRecorder()
			NewLoginHandler(mockSvc)(rr, httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}
