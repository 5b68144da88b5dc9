package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var resp Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(c *gin.Context, message string)
		status int
		code   int
	}{
		{"bad request", BadRequest, http.StatusBadRequest, 400},
		{"unauthorized", Unauthorized, http.StatusUnauthorized, 401},
		{"forbidden", Forbidden, http.StatusForbidden, 403},
		{"not found", NotFound, http.StatusNotFound, 404},
		{"conflict", Conflict, http.StatusConflict, 409},
		{"server error", ServerError, http.StatusInternalServerError, 500},
	}

	for _, tc := range cases {
		w, resp := record(func(c *gin.Context) { tc.fn(c, "msg") })
		if w.Code != tc.status {
			t.Errorf("%s: expected HTTP %d, got %d", tc.name, tc.status, w.Code)
		}
		if resp.Code != tc.code {
			t.Errorf("%s: expected code %d, got %d", tc.name, tc.code, resp.Code)
		}
	}
}

// 非法状态转移（400）与并发冲突（409）必须是可区分的响应
func TestInvalidStateDistinctFromConflict(t *testing.T) {
	invalid, _ := record(func(c *gin.Context) { BadRequest(c, "当前状态不允许该操作") })
	conflict, _ := record(func(c *gin.Context) { Conflict(c, "状态已变更，操作失败") })

	if invalid.Code == conflict.Code {
		t.Errorf("invalid-state and conflict responses should differ, both got %d", invalid.Code)
	}
	if invalid.Code != http.StatusBadRequest {
		t.Errorf("invalid state should be 400, got %d", invalid.Code)
	}
	if conflict.Code != http.StatusConflict {
		t.Errorf("conflict should be 409, got %d", conflict.Code)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	w, resp := record(func(c *gin.Context) { Success(c, gin.H{"id": "1"}) })
	if w.Code != http.StatusOK {
		t.Errorf("expected HTTP 200, got %d", w.Code)
	}
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if resp.Message != "success" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
}
