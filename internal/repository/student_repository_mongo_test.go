package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

func namespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

// sentUpdate returns the $set and $setOnInsert documents of the last update command.
func sentUpdate(mt *mtest.T) (bson.Raw, bson.Raw) {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)
	update := evt.Command.Lookup("updates", "0", "u").Document()
	return update.Lookup("$set").Document(), update.Lookup("$setOnInsert").Document()
}

func TestMongoStudentRepositoryFindByStudentID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "student_id", Value: "124BTEX2008"},
			{Key: "name", Value: "John Doe"},
			{Key: "email", Value: "john.doe@example.com"},
			{Key: "age", Value: 20},
			{Key: "competition", Value: true},
			{Key: "registration_status", Value: false},
		}))

		student, err := repo.FindByStudentID(context.Background(), "124BTEX2008")
		require.NoError(mt, err)
		assert.Equal(mt, "John Doe", student.Name)
		assert.Equal(mt, 20, student.Age)
		assert.NotEmpty(mt, student.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.FindByStudentID(context.Background(), "999NOPE")
		assert.ErrorIs(mt, err, appErrors.ErrRecordNotFound)
	})

	mt.Run("wrong field type", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "student_id", Value: "124BTEX2008"},
			{Key: "name", Value: 42},
		}))

		_, err := repo.FindByStudentID(context.Background(), "124BTEX2008")
		assert.ErrorIs(mt, err, appErrors.ErrDecode)
	})

	mt.Run("missing student_id", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Ghost"},
		}))

		_, err := repo.FindByStudentID(context.Background(), "ghost")
		assert.ErrorIs(mt, err, appErrors.ErrDecode)
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutting down"}))

		_, err := repo.FindByStudentID(context.Background(), "124BTEX2008")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, appErrors.ErrRecordNotFound)
	})
}

func TestMongoStudentRepositoryMarkRegistered(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("flips", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		changed, err := repo.MarkRegistered(context.Background(), "124BTEX2008")
		require.NoError(mt, err)
		assert.True(mt, changed)
	})

	mt.Run("already set", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		changed, err := repo.MarkRegistered(context.Background(), "124BTEX2008")
		require.NoError(mt, err)
		assert.False(mt, changed)
	})
}

func TestMongoStudentRepositoryListAndCount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "student_id", Value: "124BTEX2009"}, {Key: "name", Value: "Jane Smith"}, {Key: "registration_status", Value: true}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "student_id", Value: "124BTEX2008"}, {Key: "name", Value: "John Doe"}},
		))

		students, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, students, 2)
		assert.True(mt, students[0].RegistrationStatus)
		assert.False(mt, students[1].RegistrationStatus)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(5)}}))

		total, err := repo.Count(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), total)
	})
}

func TestMongoStudentRepositoryCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserted", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		student := &models.Student{StudentID: "124BTEX2010", Name: "Mike Johnson"}
		require.NoError(mt, repo.Create(context.Background(), student))
		assert.NotEmpty(mt, student.ID)
		assert.False(mt, student.CreatedAt.IsZero())
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(context.Background(), &models.Student{StudentID: "124BTEX2008", Name: "John Doe"})
		assert.ErrorIs(mt, err, appErrors.ErrConflict)
	})
}

func TestMongoStudentRepositoryUpsertAndInsertMany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		fields := models.StudentFields{models.StudentFieldName: true, models.StudentFieldRegistrationStatus: true}
		err := repo.Upsert(context.Background(), &models.Student{StudentID: "124BTEX2008", Name: "John Doe"}, fields)
		require.NoError(mt, err)

		set, setOnInsert := sentUpdate(mt)
		assert.Equal(mt, "John Doe", set.Lookup("name").StringValue())
		_, err = set.LookupErr("registration_status")
		assert.Error(mt, err, "an incoming false must not reset a registration")
		assert.False(mt, setOnInsert.Lookup("registration_status").Boolean())
	})

	mt.Run("upsert leaves absent fields", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		fields := models.StudentFields{models.StudentFieldRegistrationStatus: true}
		err := repo.Upsert(context.Background(), &models.Student{StudentID: "124BTEX2008", RegistrationStatus: true}, fields)
		require.NoError(mt, err)

		set, setOnInsert := sentUpdate(mt)
		assert.True(mt, set.Lookup("registration_status").Boolean())
		for _, key := range []string{"name", "email", "age", "competition"} {
			_, err := set.LookupErr(key)
			assert.Error(mt, err, key)
			_, err = setOnInsert.LookupErr(key)
			assert.NoError(mt, err, key)
		}
	})

	mt.Run("insert many", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		students := []models.Student{{StudentID: "a", Name: "A"}, {StudentID: "b", Name: "B"}}
		require.NoError(mt, repo.InsertMany(context.Background(), students))
		assert.False(mt, students[0].CreatedAt.IsZero())
	})

	mt.Run("insert none", func(mt *mtest.T) {
		repo := NewMongoStudentRepository(mt.Coll)
		require.NoError(mt, repo.InsertMany(context.Background(), nil))
	})
}

func TestMongoScanLogRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("append", func(mt *mtest.T) {
		repo := NewMongoScanLogRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		entry := &models.ScanLog{StudentID: "999NOPE", StudentName: models.UnknownStudentName, Status: models.ScanStatusNotFound, ScanType: models.ScanTypeManual}
		require.NoError(mt, repo.Append(context.Background(), entry))
		assert.NotEmpty(mt, entry.ID)
		assert.False(mt, entry.Timestamp.IsZero())
	})

	mt.Run("list recent", func(mt *mtest.T) {
		repo := NewMongoScanLogRepository(mt.Coll)
		newer := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		older := newer.Add(-time.Hour)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "student_id", Value: "124BTEX2008"}, {Key: "student_name", Value: "John Doe"}, {Key: "status", Value: "registered"}, {Key: "scan_type", Value: "barcode"}, {Key: "timestamp", Value: newer}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "student_id", Value: "999NOPE"}, {Key: "student_name", Value: "unknown"}, {Key: "status", Value: "not_found"}, {Key: "scan_type", Value: "manual"}, {Key: "timestamp", Value: older}},
		))

		logs, err := repo.ListRecent(context.Background(), 50)
		require.NoError(mt, err)
		require.Len(mt, logs, 2)
		assert.Equal(mt, models.ScanStatusRegistered, logs[0].Status)
		assert.Equal(mt, models.ScanTypeManual, logs[1].ScanType)
		assert.True(mt, logs[0].Timestamp.After(logs[1].Timestamp))
	})

	mt.Run("list recent malformed", func(mt *mtest.T) {
		repo := NewMongoScanLogRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "student_id", Value: "124BTEX2008"}, {Key: "status", Value: "registered"}, {Key: "scan_type", Value: "carrier_pigeon"}, {Key: "timestamp", Value: time.Now()}},
		))

		_, err := repo.ListRecent(context.Background(), 50)
		assert.ErrorIs(mt, err, appErrors.ErrDecode)
	})

	mt.Run("audit", func(mt *mtest.T) {
		repo := NewMongoAuditRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		entry := &models.AuditLog{Action: models.AuditActionLogout, Username: "admin", SessionID: "s1"}
		require.NoError(mt, repo.CreateAuditLog(context.Background(), entry))
		assert.NotEmpty(mt, entry.ID)
	})
}
