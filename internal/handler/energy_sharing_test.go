package handler

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// bindJSON runs Gin's JSON binding on a raw request body
func bindJSON(t *testing.T, body string, obj interface{}) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(obj)
}

// TestCompleteSharingBinding tests the completion request body validation
func TestCompleteSharingBinding(t *testing.T) {
	// 显式的 0 交付量是合法输入，不应被 required 校验拒绝
	var req CompleteSharingRequest
	if err := bindJSON(t, `{"energy_delivered_kwh": 0}`, &req); err != nil {
		t.Fatalf("Explicit zero delivery should bind, got error: %v", err)
	}
	if req.EnergyDeliveredKWh == nil || *req.EnergyDeliveredKWh != 0 {
		t.Error("Expected delivered amount to bind as explicit 0")
	}

	var missing CompleteSharingRequest
	if err := bindJSON(t, `{"quality_score": 90}`, &missing); err == nil {
		t.Error("Missing delivered amount should fail binding")
	}

	var normal CompleteSharingRequest
	if err := bindJSON(t, `{"energy_delivered_kwh": 85.5, "quality_score": 92}`, &normal); err != nil {
		t.Fatalf("Valid body should bind, got error: %v", err)
	}
	if normal.EnergyDeliveredKWh == nil || *normal.EnergyDeliveredKWh != 85.5 {
		t.Error("Expected delivered amount 85.5")
	}
}
