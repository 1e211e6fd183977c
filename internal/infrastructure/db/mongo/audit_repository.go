package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keyforge/licensing-system/internal/core/domain"
	"github.com/keyforge/licensing-system/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository persists balance-mutation journal entries to MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := bson.M{
		"login":        event.Login,
		"action":       string(event.Action),
		"minutes":      event.Minutes,
		"balance":      event.Balance,
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.HWID != "" {
		doc["hwid"] = event.HWID
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
