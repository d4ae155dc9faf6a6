package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"main/model"
	"main/usecase"

	"github.com/gin-gonic/gin"
)

// DataAccessLogger records reads of filtered resources for compliance.
type DataAccessLogger interface {
	LogDataAccess(event model.DataAccessEvent)
}

// FieldSet is the outcome of a policy lookup: either every field minus the
// sensitive denylist, or an explicit allowlist.
type FieldSet struct {
	All    bool
	Fields []string
}

// sensitiveFields are never exposed in any response, even under an All
// grant.
var sensitiveFields = map[string]bool{
	"passwordHash":         true,
	"passwordSalt":         true,
	"apiKeys":              true,
	"internalNotes":        true,
	"socialSecurityNumber": true,
}

var allFields = FieldSet{All: true}

// fieldAccessPolicy maps role and resource type to the fields that role may
// read. A missing entry denies; there is no fallback grant.
var fieldAccessPolicy = map[model.Role]map[model.ResourceType]FieldSet{
	model.RolePatient: {
		model.ResourceVitals:        allFields,
		model.ResourcePrescriptions: allFields,
		model.ResourceAppointments:  allFields,
		model.ResourcePayments:      allFields,
		model.ResourceDocuments:     allFields,
	},
	model.RoleDoctor: {
		model.ResourceVitals:         allFields,
		model.ResourcePrescriptions:  allFields,
		model.ResourceAppointments:   allFields,
		model.ResourcePayments:       allFields,
		model.ResourceDocuments:      allFields,
		model.ResourcePatientProfile: allFields,
	},
	model.RoleCaregiver: {
		model.ResourceVitals:        allFields,
		model.ResourcePrescriptions: allFields,
		model.ResourceAppointments:  allFields,
		model.ResourcePayments:      allFields,
		model.ResourceDocuments:     allFields,
	},
	model.RoleReceptionist: {
		model.ResourcePatientProfile: {Fields: []string{"id", "name", "age", "phone", "email"}},
		model.ResourceAppointments:   allFields,
		model.ResourcePayments:       {Fields: []string{"id", "amount", "status", "createdAt"}},
	},
	model.RoleAdmin: {
		model.ResourceVitals:         allFields,
		model.ResourcePrescriptions:  allFields,
		model.ResourceAppointments:   allFields,
		model.ResourcePayments:       allFields,
		model.ResourceDocuments:      allFields,
		model.ResourcePatientProfile: allFields,
	},
}

// writePermissions maps role to the resource types it may modify. The empty
// slice with All unset denies everything.
var writePermissions = map[model.Role]FieldSet{
	model.RolePatient:      {Fields: []string{string(model.ResourceVitals), string(model.ResourceAppointments)}},
	model.RoleDoctor:       allFields,
	model.RoleCaregiver:    {Fields: []string{string(model.ResourceVitals)}},
	model.RoleReceptionist: {Fields: []string{string(model.ResourceAppointments)}},
	model.RoleAdmin:        allFields,
}

// AllowedFields resolves the policy for a role and resource type. Unknown
// combinations deny rather than fail open.
func AllowedFields(role model.Role, resource model.ResourceType) FieldSet {
	return fieldAccessPolicy[role][resource]
}

// CanAccessField reports whether a role may read a single named field of a
// resource. Sensitive fields are refused unconditionally.
func CanAccessField(role model.Role, resource model.ResourceType, field string) bool {
	if sensitiveFields[field] {
		return false
	}
	fs := AllowedFields(role, resource)
	if fs.All {
		return true
	}
	for _, f := range fs.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// FilterFields returns a copy of obj stripped down to what the field set
// permits. The sensitive denylist applies in both branches.
func FilterFields(obj map[string]any, fs FieldSet) map[string]any {
	if obj == nil {
		return nil
	}

	filtered := make(map[string]any, len(obj))
	if fs.All {
		for k, v := range obj {
			if !sensitiveFields[k] {
				filtered[k] = v
			}
		}
		return filtered
	}

	for _, field := range fs.Fields {
		if sensitiveFields[field] {
			continue
		}
		if v, ok := obj[field]; ok {
			filtered[field] = v
		}
	}
	return filtered
}

// FilterList applies FilterFields to each object element of a decoded JSON
// array. Non-object elements pass through unchanged.
func FilterList(list []any, fs FieldSet) []any {
	filtered := make([]any, len(list))
	for i, item := range list {
		if obj, ok := item.(map[string]any); ok {
			filtered[i] = FilterFields(obj, fs)
		} else {
			filtered[i] = item
		}
	}
	return filtered
}

type filteringWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *filteringWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *filteringWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// FilterByRole rewrites successful JSON responses for the given resource
// type through the field access policy before they reach the client. The
// response body is buffered for the duration of the handler; payloads that
// are not JSON objects or arrays pass through untouched.
func FilterByRole(resource model.ResourceType, audit DataAccessLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		writer := &filteringWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()
		c.Writer = writer.ResponseWriter

		body := writer.buf.Bytes()
		status := writer.Status()
		if status >= http.StatusBadRequest || len(body) == 0 {
			writer.ResponseWriter.Write(body)
			return
		}

		role := model.Role(c.GetString("user_role"))
		fs := AllowedFields(role, resource)

		filtered, recordCount, ok := filterPayload(body, fs)
		if !ok {
			writer.ResponseWriter.Write(body)
			return
		}

		if audit != nil {
			if userID := c.GetString("user_id"); userID != "" {
				audit.LogDataAccess(model.DataAccessEvent{
					UserID:       userID,
					UserRole:     role,
					ResourceType: resource,
					ResourceID:   c.Param("id"),
					Action:       "read",
					Success:      true,
					Metadata: map[string]any{
						"record_count": recordCount,
						"all_fields":   fs.All,
					},
				})
			}
		}

		c.Header("Content-Length", strconv.Itoa(len(filtered)))
		writer.ResponseWriter.Write(filtered)
	}
}

// filterPayload applies the field set to a raw JSON body. Objects carrying a
// "data" envelope are filtered inside the envelope, matching the response
// helpers.
func filterPayload(body []byte, fs FieldSet) ([]byte, int, bool) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, false
	}

	var filtered any
	count := 1
	switch data := payload.(type) {
	case []any:
		filtered = FilterList(data, fs)
		count = len(data)
	case map[string]any:
		if inner, ok := data["data"]; ok {
			switch inner := inner.(type) {
			case []any:
				data["data"] = FilterList(inner, fs)
				count = len(inner)
			case map[string]any:
				data["data"] = FilterFields(inner, fs)
			}
			filtered = data
		} else {
			filtered = FilterFields(data, fs)
		}
	default:
		return nil, 0, false
	}

	out, err := json.Marshal(filtered)
	if err != nil {
		return nil, 0, false
	}
	return out, count, true
}

// RequireWriteAccess rejects mutations of a resource type the caller's role
// may not modify.
func RequireWriteAccess(resource model.ResourceType, audit usecase.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString("user_role"))
		perms := writePermissions[role]

		allowed := perms.All
		for _, r := range perms.Fields {
			if !allowed && r == string(resource) {
				allowed = true
			}
		}

		if !allowed {
			if audit != nil {
				audit.LogSecurity(model.SecurityEvent{
					UserID:      c.GetString("user_id"),
					UserRole:    role,
					EventType:   "unauthorized_write_attempt",
					Description: "Attempted to write " + string(resource) + " without permission",
					Severity:    model.SeverityWarning,
					Metadata: map[string]any{
						"resource_type": string(resource),
						"method":        c.Request.Method,
						"path":          c.Request.URL.Path,
					},
				})
			}
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Permission Denied",
				"message": "Your role does not have write access to " + string(resource),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
