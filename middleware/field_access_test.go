package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/model"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFilterFieldsAllStripsSensitive(t *testing.T) {
	obj := map[string]any{
		"id":                   "p-1",
		"name":                 "Pat Doe",
		"passwordHash":         "secret",
		"socialSecurityNumber": "000-00-0000",
	}

	filtered := FilterFields(obj, FieldSet{All: true})

	if _, ok := filtered["passwordHash"]; ok {
		t.Error("passwordHash survived an All grant")
	}
	if _, ok := filtered["socialSecurityNumber"]; ok {
		t.Error("socialSecurityNumber survived an All grant")
	}
	if filtered["id"] != "p-1" || filtered["name"] != "Pat Doe" {
		t.Errorf("non-sensitive fields mangled: %v", filtered)
	}
}

func TestFilterFieldsAllowlist(t *testing.T) {
	obj := map[string]any{
		"id":            "pay-1",
		"amount":        42.5,
		"status":        "paid",
		"cardNumber":    "4111",
		"internalNotes": "flagged",
	}

	filtered := FilterFields(obj, FieldSet{Fields: []string{"id", "amount", "status", "internalNotes"}})

	if len(filtered) != 3 {
		t.Errorf("filtered fields = %v, want exactly id, amount, status", filtered)
	}
	if _, ok := filtered["cardNumber"]; ok {
		t.Error("unlisted field survived allowlist filtering")
	}
	if _, ok := filtered["internalNotes"]; ok {
		t.Error("sensitive field survived despite being allowlisted")
	}
}

func TestAllowedFieldsDenyByDefault(t *testing.T) {
	tests := []struct {
		name     string
		role     model.Role
		resource model.ResourceType
		wantDeny bool
	}{
		{"unknown role", model.Role("guest"), model.ResourceVitals, true},
		{"patient cannot read profiles", model.RolePatient, model.ResourcePatientProfile, true},
		{"receptionist cannot read vitals", model.RoleReceptionist, model.ResourceVitals, true},
		{"doctor reads vitals", model.RoleDoctor, model.ResourceVitals, false},
		{"receptionist reads appointments", model.RoleReceptionist, model.ResourceAppointments, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := AllowedFields(tt.role, tt.resource)
			denied := !fs.All && len(fs.Fields) == 0
			if denied != tt.wantDeny {
				t.Errorf("AllowedFields(%s, %s) denied = %v, want %v", tt.role, tt.resource, denied, tt.wantDeny)
			}
		})
	}
}

func TestCanAccessField(t *testing.T) {
	tests := []struct {
		name     string
		role     model.Role
		resource model.ResourceType
		field    string
		want     bool
	}{
		{"admin reads any vitals field", model.RoleAdmin, model.ResourceVitals, "glucose", true},
		{"admin cannot read ssn", model.RoleAdmin, model.ResourcePatientProfile, "socialSecurityNumber", false},
		{"receptionist reads payment status", model.RoleReceptionist, model.ResourcePayments, "status", true},
		{"receptionist cannot read payment method", model.RoleReceptionist, model.ResourcePayments, "cardNumber", false},
		{"unknown role reads nothing", model.Role("guest"), model.ResourceVitals, "glucose", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessField(tt.role, tt.resource, tt.field); got != tt.want {
				t.Errorf("CanAccessField(%s, %s, %s) = %v, want %v", tt.role, tt.resource, tt.field, got, tt.want)
			}
		})
	}
}

func setRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("user_role", role)
		c.Next()
	}
}

func TestFilterByRoleMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/payments", setRole("receptionist"), FilterByRole(model.ResourcePayments, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":         "pay-1",
			"amount":     10,
			"status":     "paid",
			"cardNumber": "4111",
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if _, ok := body["cardNumber"]; ok {
		t.Errorf("cardNumber leaked through filtering: %v", body)
	}
	if body["status"] != "paid" {
		t.Errorf("allowed field missing: %v", body)
	}
}

func TestFilterByRoleEnvelope(t *testing.T) {
	router := gin.New()
	router.GET("/vitals", setRole("doctor"), FilterByRole(model.ResourceVitals, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"data": []any{
				map[string]any{"glucose": 110, "internalNotes": "x"},
				map[string]any{"glucose": 95, "internalNotes": "y"},
			},
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vitals", nil))

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("data length = %d, want 2", len(body.Data))
	}
	for i, item := range body.Data {
		if _, ok := item["internalNotes"]; ok {
			t.Errorf("item %d leaked internalNotes", i)
		}
		if _, ok := item["glucose"]; !ok {
			t.Errorf("item %d lost glucose", i)
		}
	}
}

func TestFilterByRoleErrorsPassThrough(t *testing.T) {
	router := gin.New()
	router.GET("/vitals", setRole("patient"), FilterByRole(model.ResourceVitals, nil), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vitals", nil))

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["error"] != "not found" {
		t.Errorf("error body mangled: %v", body)
	}
}

func TestRequireWriteAccess(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		resource   model.ResourceType
		wantStatus int
	}{
		{"patient writes vitals", "patient", model.ResourceVitals, http.StatusOK},
		{"patient cannot write prescriptions", "patient", model.ResourcePrescriptions, http.StatusForbidden},
		{"doctor writes anything", "doctor", model.ResourcePrescriptions, http.StatusOK},
		{"receptionist writes appointments", "receptionist", model.ResourceAppointments, http.StatusOK},
		{"receptionist cannot write vitals", "receptionist", model.ResourceVitals, http.StatusForbidden},
		{"unknown role writes nothing", "guest", model.ResourceVitals, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/write", setRole(tt.role), RequireWriteAccess(tt.resource, nil), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
