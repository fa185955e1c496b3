package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneybook/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "month", "content", "source", "created_at", "deleted_at"})
}

// 未配置 AI 密钥时走内置规则回退，并带不可用提示
func TestInsightHandler_Get_FallbackWithoutAIKey(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, "2024-03-15", "午餐", "餐饮", 42.50, time.Now(), time.Now(), nil).
			AddRow(2, 1, "2024-03-16", "打车", "交通", 23.00, time.Now(), time.Now(), nil))

	// 无缓存
	mock.ExpectQuery("SELECT .* FROM `spending_insights`").
		WillReturnRows(insightRows())

	// 生成结果写入缓存
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `spending_insights`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cfg := &config.Config{AI: config.AIConfig{}}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/insights", NewInsightHandler(cfg).Get)

	req := httptest.NewRequest("GET", "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "fallback", data["source"])
	assert.Equal(t, "2024-03", data["month"])
	assert.Equal(t, "AI 服务暂不可用，以下为系统自动总结", data["notice"])
	assert.True(t, strings.Contains(data["content"].(string), "- "))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightHandler_Get_CacheHit(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, "2024-03-15", "午餐", "餐饮", 42.50, time.Now(), time.Now(), nil))

	// 24 小时内的缓存直接返回，不触发生成，也不再写库
	mock.ExpectQuery("SELECT .* FROM `spending_insights`").
		WillReturnRows(insightRows().
			AddRow(9, 1, "2024-03", "你这个月餐饮花得不少。", "ai", time.Now().Add(-time.Hour), nil))

	cfg := &config.Config{AI: config.AIConfig{}}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/insights", NewInsightHandler(cfg).Get)

	req := httptest.NewRequest("GET", "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["cached"])
	assert.Equal(t, "ai", data["source"])
	assert.Equal(t, "你这个月餐饮花得不少。", data["content"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightHandler_Get_RefreshSkipsCache(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, "2024-03-15", "午餐", "餐饮", 42.50, time.Now(), time.Now(), nil))

	// refresh=true 时不读缓存，直接生成并写入
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `spending_insights`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cfg := &config.Config{AI: config.AIConfig{}}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/insights", NewInsightHandler(cfg).Get)

	req := httptest.NewRequest("GET", "/insights?refresh=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["cached"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightHandler_Get_NoData(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 没有任何流水：返回固定文案，不读也不写缓存
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows())

	cfg := &config.Config{AI: config.AIConfig{}}
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/insights", NewInsightHandler(cfg).Get)

	req := httptest.NewRequest("GET", "/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "暂无消费数据，先记几笔账再来看消费洞察吧。", data["content"])
	assert.Equal(t, "fallback", data["source"])
	require.NoError(t, mock.ExpectationsWereMet())
}
