package energy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestClientCreation tests basic client creation
func TestClientCreation(t *testing.T) {
	client := NewClient("http://localhost:8080",
		WithTimeout(10*time.Second),
		WithToken("abc"),
	)

	if client == nil {
		t.Fatal("Failed to create client")
	}
	if client.Token() != "abc" {
		t.Errorf("Expected token abc, got %s", client.Token())
	}
	if client.timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", client.timeout)
	}
}

// TestLogin tests token capture on login
func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "user@example.com" {
			t.Errorf("Unexpected email %s", body["email"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    0,
			"message": "success",
			"data": map[string]interface{}{
				"token": "jwt-token-123",
				"user":  map[string]string{"id": "u1", "email": "user@example.com"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Login("user@example.com", "password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if client.Token() != "jwt-token-123" {
		t.Errorf("Expected token jwt-token-123, got %s", client.Token())
	}
}

// TestLoginError tests API error mapping
func TestLoginError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    401,
			"message": "邮箱或密码错误",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Login("user@example.com", "wrong")
	if err == nil {
		t.Fatal("Expected error for bad credentials")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 401 || apiErr.Code != 401 {
		t.Errorf("Unexpected error codes: %d/%d", apiErr.StatusCode, apiErr.Code)
	}
}

// TestValidateInvitation tests the public invitation precheck
func TestValidateInvitation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/invitations/validate/tok123" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    0,
			"message": "success",
			"data": map[string]interface{}{
				"valid": true,
				"data": map[string]interface{}{
					"role":         "member",
					"organization": map[string]string{"name": "Test Org"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.ValidateInvitation("tok123")
	if err != nil {
		t.Fatalf("ValidateInvitation failed: %v", err)
	}
	if !result.Valid {
		t.Error("Expected valid invitation")
	}
	if result.Data == nil || result.Data.Organization.Name != "Test Org" {
		t.Error("Expected organization name in payload")
	}
}

// TestSharingLifecycle tests propose then complete against a fake server
func TestSharingLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/api/energy-sharings":
			if r.Header.Get("Authorization") != "Bearer t" {
				t.Error("Expected bearer token on authenticated call")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0,
				"data": map[string]interface{}{
					"id":                "s1",
					"sharing_code":      "ES-AAAA-BBBB-CCCC",
					"status":            "proposed",
					"energy_amount_kwh": 100.0,
					"price_per_kwh":     0.20,
					"total_amount":      20.0,
				},
			})
		case r.Method == "POST" && r.URL.Path == "/api/energy-sharings/s1/complete":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0,
				"data": map[string]interface{}{
					"id":                   "s1",
					"status":               "completed",
					"energy_delivered_kwh": 90.0,
					"energy_remaining_kwh": 10.0,
					"payment_status":       "pending",
				},
			})
		default:
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("t"))

	sharing, err := client.ProposeSharing(ProposeSharingParams{
		ConsumerUserID:  "u2",
		EnergyAmountKWh: 100,
		PricePerKWh:     0.20,
	})
	if err != nil {
		t.Fatalf("ProposeSharing failed: %v", err)
	}
	if sharing.Status != "proposed" {
		t.Errorf("Expected proposed, got %s", sharing.Status)
	}
	if sharing.TotalAmount != 20.0 {
		t.Errorf("Expected total 20.0, got %f", sharing.TotalAmount)
	}

	completed, err := client.CompleteSharing("s1", 90)
	if err != nil {
		t.Fatalf("CompleteSharing failed: %v", err)
	}
	if completed.Status != "completed" {
		t.Errorf("Expected completed, got %s", completed.Status)
	}
	if completed.EnergyRemainingKWh != 10.0 {
		t.Errorf("Expected remaining 10.0, got %f", completed.EnergyRemainingKWh)
	}
}
