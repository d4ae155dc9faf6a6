package services

import (
	"context"
	"log"
	"time"

	"main/model"
	"main/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger persists security and data-access events. All logging is
// fire-and-forget: persistence happens on a separate goroutine and a failure
// is reported to stderr, never to the caller. A nil *AuditLogger is a valid
// no-op sink.
type AuditLogger struct {
	collection *mongo.Collection
}

func NewAuditLogger(client *mongo.Client, dbName string) *AuditLogger {
	return &AuditLogger{
		collection: client.Database(dbName).Collection("audit_logs"),
	}
}

// LogSecurity records a security event. Safe to call on a nil logger.
func (a *AuditLogger) LogSecurity(event model.SecurityEvent) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = model.SeverityWarning
	}
	a.insert("SECURITY", event)
}

// LogDataAccess records a read of a sensitive resource. Safe to call on a
// nil logger.
func (a *AuditLogger) LogDataAccess(event model.DataAccessEvent) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	a.insert("DATA_ACCESS", event)
}

func (a *AuditLogger) insert(kind string, entry any) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: audit logger panic recovered: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := a.collection.InsertOne(ctx, entry); err != nil {
			utils.TrackError("audit", "insert_failed")
			log.Printf("Warning: failed to write %s audit event: %v", kind, err)
		}
	}()
}
