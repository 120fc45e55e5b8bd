package repository

import (
	"context"
	"testing"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockedMongoGateway(mt *mtest.T) *MongoGateway {
	// createIndexes issued by the constructor
	mt.AddMockResponses(mtest.CreateSuccessResponse())
	return NewMongoGateway(mt.DB, "flight_bookings", entity.FlightBookingView(), logger.NewNop()).(*MongoGateway)
}

func TestMongoGateway(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("fetch all", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		ns := mt.DB.Name() + ".flight_bookings"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "_key", Value: "Carrid=AA|Connid=1|Bookid=100|Fldate=20240101"},
				{Key: "Carrid", Value: "AA"},
				{Key: "Connid", Value: "1"},
				{Key: "Bookid", Value: "100"},
				{Key: "Fldate", Value: "2024-01-01"},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "Carrid", Value: "BB"},
				{Key: "Seats", Value: int32(2)},
			},
		))

		col, err := gw.FetchAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, col, 2)
		assert.Equal(mt, "{Carrid=AA, Connid=1, Bookid=100, Fldate=2024-01-01}", col[0].String())
		assert.Equal(mt, "{Carrid=BB, Seats=2}", col[1].String())
	})

	mt.Run("create", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record := entity.NewRecord(
			entity.Field{Name: "Carrid", Value: "AA"},
			entity.Field{Name: "Connid", Value: "1"},
			entity.Field{Name: "Bookid", Value: "100"},
			entity.Field{Name: "Fldate", Value: "2024-01-01"},
		)
		require.NoError(mt, gw.Create(context.Background(), record))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		record := entity.NewRecord(
			entity.Field{Name: "Carrid", Value: "AA"},
			entity.Field{Name: "Connid", Value: "1"},
			entity.Field{Name: "Bookid", Value: "100"},
			entity.Field{Name: "Fldate", Value: "2024-01-01"},
		)
		err := gw.Create(context.Background(), record)
		assert.ErrorIs(mt, err, entity.ErrDuplicateKey)
	})

	mt.Run("create with incomplete key", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		err := gw.Create(context.Background(), entity.NewRecord(entity.Field{Name: "Carrid", Value: "AA"}))
		assert.ErrorIs(mt, err, entity.ErrInvalidKey)
	})

	mt.Run("delete", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		err := gw.DeleteByKey(context.Background(), []entity.KeyField{{Name: "Carrid", Value: "AA"}})
		require.NoError(mt, err)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		gw := newMockedMongoGateway(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := gw.DeleteByKey(context.Background(), []entity.KeyField{{Name: "Carrid", Value: "ZZ"}})
		assert.ErrorIs(mt, err, entity.ErrNotFound)
	})
}

func TestRecordDocumentMapping(t *testing.T) {
	record := entity.NewRecord(entity.Field{Name: "Carrid", Value: "AA"}, entity.Field{Name: "Fldate", Value: "2024-01-01"})
	key := []entity.KeyField{{Name: "Carrid", Value: "AA"}, {Name: "Fldate", Value: "20240101"}}

	doc := recordToDocument(record, key)
	assert.Equal(t, bson.D{
		{Key: "_key", Value: "Carrid=AA|Fldate=20240101"},
		{Key: "Carrid", Value: "AA"},
		{Key: "Fldate", Value: "2024-01-01"},
	}, doc)
	assert.True(t, record.Equal(documentToRecord(doc)))
}
