package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type scanLogDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StudentID   string             `bson:"student_id"`
	StudentName string             `bson:"student_name"`
	Status      string             `bson:"status"`
	ScanType    string             `bson:"scan_type"`
	Timestamp   time.Time          `bson:"timestamp"`
}

// MongoScanLogRepository is the append-only scan log collection.
type MongoScanLogRepository struct {
	coll *mongo.Collection
}

// NewMongoScanLogRepository constructs a MongoScanLogRepository.
func NewMongoScanLogRepository(coll *mongo.Collection) *MongoScanLogRepository {
	return &MongoScanLogRepository{coll: coll}
}

// EnsureIndexes creates the timestamp index used by ListRecent.
func (r *MongoScanLogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return fmt.Errorf("create scan log index: %w", err)
	}
	return nil
}

// Append writes one scan log entry.
func (r *MongoScanLogRepository) Append(ctx context.Context, entry *models.ScanLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	doc := scanLogDocument{
		StudentID:   entry.StudentID,
		StudentName: entry.StudentName,
		Status:      string(entry.Status),
		ScanType:    string(entry.ScanType),
		Timestamp:   entry.Timestamp,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("append scan log: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *MongoScanLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ScanLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list scan logs: %w", err)
	}
	var docs []scanLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status, "failed to decode scan log documents")
	}
	logs := make([]models.ScanLog, 0, len(docs))
	for _, doc := range docs {
		entry := models.ScanLog{
			ID:          doc.ID.Hex(),
			StudentID:   doc.StudentID,
			StudentName: doc.StudentName,
			Status:      models.ScanStatus(doc.Status),
			ScanType:    models.ScanType(doc.ScanType),
			Timestamp:   doc.Timestamp,
		}
		if !entry.Valid() {
			return nil, appErrors.Clone(appErrors.ErrDecode, fmt.Sprintf("scan log document %s is malformed", entry.ID))
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// MongoAuditRepository mirrors session events into a write-only collection.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

// NewMongoAuditRepository constructs a MongoAuditRepository.
func NewMongoAuditRepository(coll *mongo.Collection) *MongoAuditRepository {
	return &MongoAuditRepository{coll: coll}
}

// CreateAuditLog stores an audit log entry.
func (r *MongoAuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	doc := bson.M{
		"action":     log.Action,
		"username":   log.Username,
		"session_id": log.SessionID,
		"ip_address": log.IPAddress,
		"user_agent": log.UserAgent,
		"created_at": log.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid.Hex()
	}
	return nil
}
