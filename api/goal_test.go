package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "month", "category", "amount", "created_at", "updated_at", "deleted_at"})
}

func TestGoalHandler_Save_Insert(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 不带 id 且（月份, 类别）无已有目标：插入新记录
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows())
	mock.ExpectExec("INSERT INTO `goals`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/goals", NewGoalHandler().Save)

	body := `{"month":"2024-03","category":"餐饮","amount":"100"}`
	req := httptest.NewRequest("PUT", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "保存成功", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2024-03", data["month"])
	assert.Equal(t, float64(100), data["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Save_OverwriteExisting(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 不带 id 且（月份, 类别）已有目标：覆盖金额而不是新建
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(7, 1, "2024-03", "餐饮", 80.00, time.Now(), time.Now(), nil))
	mock.ExpectExec("UPDATE `goals`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/goals", NewGoalHandler().Save)

	body := `{"month":"2024-03","category":"餐饮","amount":"120"}`
	req := httptest.NewRequest("PUT", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, float64(120), data["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Save_EditByID_Conflict(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 按 id 编辑：目标本身存在
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(3, 1, "2024-02", "交通", 50.00, time.Now(), time.Now(), nil))

	// 改成的（月份, 类别）撞上另一条目标
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(7, 1, "2024-03", "餐饮", 80.00, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/goals", NewGoalHandler().Save)

	body := `{"id":3,"month":"2024-03","category":"餐饮","amount":"60"}`
	req := httptest.NewRequest("PUT", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 409, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "已有预算目标")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Save_EditByID(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(3, 1, "2024-02", "交通", 50.00, time.Now(), time.Now(), nil))

	// 没有冲突目标
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `goals`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 更新后重新加载
	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(3, 1, "2024-02", "交通", 60.00, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/goals", NewGoalHandler().Save)

	body := `{"id":3,"month":"2024-02","category":"交通","amount":"60"}`
	req := httptest.NewRequest("PUT", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Save_InvalidMonth(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/goals", NewGoalHandler().Save)

	body := `{"month":"2024/03","category":"餐饮","amount":"100"}`
	req := httptest.NewRequest("PUT", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "月份格式错误")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows().
			AddRow(1, 1, "2024-03", "餐饮", 100.00, time.Now(), time.Now(), nil).
			AddRow(2, 1, "2024-03", "交通", 50.00, time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/goals", NewGoalHandler().List)

	req := httptest.NewRequest("GET", "/goals?month=2024-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `goals`").
		WillReturnRows(goalRows())

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/goals/:id", NewGoalHandler().Delete)

	req := httptest.NewRequest("DELETE", "/goals/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "目标不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
