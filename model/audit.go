package model

import "time"

// Audit event severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SecurityEvent is an entry for the security audit trail. Events are
// fire-and-forget; producers never wait on persistence.
type SecurityEvent struct {
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
	UserID      string         `bson:"user_id" json:"user_id"`
	UserRole    Role           `bson:"user_role" json:"user_role"`
	EventType   string         `bson:"event_type" json:"event_type"`
	Description string         `bson:"description" json:"description"`
	Severity    string         `bson:"severity" json:"severity"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// DataAccessEvent records reads of sensitive resources for compliance.
type DataAccessEvent struct {
	Timestamp    time.Time      `bson:"timestamp" json:"timestamp"`
	UserID       string         `bson:"user_id" json:"user_id"`
	UserRole     Role           `bson:"user_role" json:"user_role"`
	ResourceType ResourceType   `bson:"resource_type" json:"resource_type"`
	ResourceID   string         `bson:"resource_id" json:"resource_id"`
	Action       string         `bson:"action" json:"action"`
	Success      bool           `bson:"success" json:"success"`
	Metadata     map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
