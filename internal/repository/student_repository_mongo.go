package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

// studentDocument is the stored shape of a student in MongoDB.
type studentDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	StudentID          string             `bson:"student_id"`
	Name               string             `bson:"name"`
	Email              string             `bson:"email"`
	Age                int                `bson:"age"`
	Competition        bool               `bson:"competition"`
	RegistrationStatus bool               `bson:"registration_status"`
	CreatedAt          time.Time          `bson:"created_at,omitempty"`
	UpdatedAt          time.Time          `bson:"updated_at,omitempty"`
}

func (d studentDocument) toModel() models.Student {
	return models.Student{
		ID:                 d.ID.Hex(),
		StudentID:          d.StudentID,
		Name:               d.Name,
		Email:              d.Email,
		Age:                d.Age,
		Competition:        d.Competition,
		RegistrationStatus: d.RegistrationStatus,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func newStudentDocument(s *models.Student) studentDocument {
	return studentDocument{
		StudentID:          s.StudentID,
		Name:               s.Name,
		Email:              s.Email,
		Age:                s.Age,
		Competition:        s.Competition,
		RegistrationStatus: s.RegistrationStatus,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// MongoStudentRepository stores the student directory in a MongoDB collection.
type MongoStudentRepository struct {
	coll *mongo.Collection
}

// NewMongoStudentRepository constructs a MongoStudentRepository.
func NewMongoStudentRepository(coll *mongo.Collection) *MongoStudentRepository {
	return &MongoStudentRepository{coll: coll}
}

// EnsureIndexes creates the unique student_id index.
func (r *MongoStudentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "student_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_student_id"),
	})
	if err != nil {
		return fmt.Errorf("create student index: %w", err)
	}
	return nil
}

// FindByStudentID fetches a student by business identifier.
func (r *MongoStudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	res := r.coll.FindOne(ctx, bson.M{"student_id": studentID})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	var doc studentDocument
	if err := res.Decode(&doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status, "failed to decode student document")
	}
	student := doc.toModel()
	if !student.Valid() {
		return nil, appErrors.Clone(appErrors.ErrDecode, "student document has no student_id")
	}
	return &student, nil
}

// MarkRegistered flips registration_status to true only if it is not already true.
// It reports whether this call performed the flip.
func (r *MongoStudentRepository) MarkRegistered(ctx context.Context, studentID string) (bool, error) {
	filter := bson.M{"student_id": studentID, "registration_status": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"registration_status": true, "updated_at": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mark registered: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// List returns every student ordered by name.
func (r *MongoStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "student_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDecode.Code, appErrors.ErrDecode.Status, "failed to decode student documents")
	}
	students := make([]models.Student, 0, len(docs))
	for _, doc := range docs {
		student := doc.toModel()
		if !student.Valid() {
			return nil, appErrors.Clone(appErrors.ErrDecode, fmt.Sprintf("student document %s has no student_id", student.ID))
		}
		students = append(students, student)
	}
	return students, nil
}

// Count returns the number of provisioned students.
func (r *MongoStudentRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a new student, rejecting a duplicate student_id.
func (r *MongoStudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, newStudentDocument(student))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student ID %s already exists", student.StudentID))
		}
		return fmt.Errorf("create student: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		student.ID = oid.Hex()
	}
	return nil
}

// Upsert inserts or refreshes a student by student_id. On an existing record
// only the attributes in fields are overwritten, and a stored registration is
// never reset by an incoming false.
func (r *MongoStudentRepository) Upsert(ctx context.Context, student *models.Student, fields models.StudentFields) error {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	setOnInsert := bson.M{"created_at": now}
	values := map[models.StudentField]interface{}{
		models.StudentFieldName:        student.Name,
		models.StudentFieldEmail:       student.Email,
		models.StudentFieldAge:         student.Age,
		models.StudentFieldCompetition: student.Competition,
	}
	for field, value := range values {
		if fields.Has(field) {
			set[string(field)] = value
		} else {
			setOnInsert[string(field)] = value
		}
	}
	if fields.Has(models.StudentFieldRegistrationStatus) && student.RegistrationStatus {
		set["registration_status"] = true
	} else {
		setOnInsert["registration_status"] = false
	}
	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}
	_, err := r.coll.UpdateOne(ctx, bson.M{"student_id": student.StudentID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}
	return nil
}

// InsertMany inserts the given students in one batch.
func (r *MongoStudentRepository) InsertMany(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(students))
	for i := range students {
		if students[i].CreatedAt.IsZero() {
			students[i].CreatedAt = now
		}
		students[i].UpdatedAt = now
		docs = append(docs, newStudentDocument(&students[i]))
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert students: %w", err)
	}
	return nil
}

// Ping checks connectivity to the deployment behind the collection.
func (r *MongoStudentRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
