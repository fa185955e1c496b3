package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"moneybook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "token", "email", "expires_at", "used", "created_at", "deleted_at"})
}

func testResetConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug", BaseURL: "http://localhost:8080"},
		Email:  config.EmailConfig{Enabled: false},
	}
}

// 邮箱不存在时返回与存在时相同的提示，避免暴露注册信息
func TestPasswordResetHandler_RequestReset_UnknownEmail(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows())

	router := gin.New()
	h := NewPasswordResetHandler(testResetConfig())
	router.POST("/request-reset", h.RequestReset)

	body := `{"email":"nobody@example.com"}`
	req := httptest.NewRequest("POST", "/request-reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "如果该邮箱已注册，重置邮件将在几分钟内送达", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_RequestReset(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows().
			AddRow(1, "user", "hash", "user@example.com", time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `password_resets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	// 邮件服务未启用，发送失败只记日志，不影响应答
	h := NewPasswordResetHandler(testResetConfig())
	router.POST("/request-reset", h.RequestReset)

	body := `{"email":"user@example.com"}`
	req := httptest.NewRequest("POST", "/request-reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "如果该邮箱已注册，重置邮件将在几分钟内送达", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WillReturnRows(resetRows().
			AddRow(1, 1, "validtoken", "user@example.com", time.Now().Add(10*time.Minute), false, time.Now(), nil))

	// 改密码和标记令牌在同一事务内
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `password_resets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	h := NewPasswordResetHandler(testResetConfig())
	router.POST("/reset", h.ResetPassword)

	body := `{"token":"validtoken","new_password":"newpassword123"}`
	req := httptest.NewRequest("POST", "/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "密码重置成功，请使用新密码登录", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword_ExpiredToken(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WillReturnRows(resetRows().
			AddRow(1, 1, "expiredtoken", "user@example.com", time.Now().Add(-time.Minute), false, time.Now(), nil))

	router := gin.New()
	h := NewPasswordResetHandler(testResetConfig())
	router.POST("/reset", h.ResetPassword)

	body := `{"token":"expiredtoken","new_password":"newpassword123"}`
	req := httptest.NewRequest("POST", "/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "令牌无效或已过期", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword_UsedToken(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WillReturnRows(resetRows().
			AddRow(1, 1, "usedtoken", "user@example.com", time.Now().Add(10*time.Minute), true, time.Now(), nil))

	router := gin.New()
	h := NewPasswordResetHandler(testResetConfig())
	router.POST("/reset", h.ResetPassword)

	body := `{"token":"usedtoken","new_password":"newpassword123"}`
	req := httptest.NewRequest("POST", "/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
