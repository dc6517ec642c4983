package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tajapart/internal/model"
)

type fakeAgreementColl struct {
	docs map[string]model.Agreement // keyed by apartment_no
}

func newFakeAgreementColl(agreements ...model.Agreement) *fakeAgreementColl {
	coll := &fakeAgreementColl{docs: make(map[string]model.Agreement)}
	for _, a := range agreements {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		coll.docs[a.ApartmentNo] = a
	}
	return coll
}

func (f *fakeAgreementColl) lookup(filter bson.M) (model.Agreement, bool) {
	if no, ok := filter["apartment_no"].(string); ok {
		a, found := f.docs[no]
		return a, found
	}
	if email, ok := filter["user_email"].(string); ok {
		status, hasStatus := filter["status"].(string)
		for _, a := range f.docs {
			if a.UserEmail != email {
				continue
			}
			if hasStatus && a.Status != status {
				continue
			}
			return a, true
		}
	}
	if id, ok := filter["_id"].(primitive.ObjectID); ok {
		for _, a := range f.docs {
			if a.ID == id {
				return a, true
			}
		}
	}
	return model.Agreement{}, false
}

func (f *fakeAgreementColl) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if a, ok := f.lookup(filter.(bson.M)); ok {
		return mongo.NewSingleResultFromDocument(a, nil, nil)
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeAgreementColl) FindOneAndUpdate(_ context.Context, filter interface{}, update interface{}, _ ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	a, ok := f.lookup(filter.(bson.M))
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	set := update.(bson.M)["$set"].(bson.M)
	if status, ok := set["status"].(string); ok {
		a.Status = status
	}
	if accept, ok := set["accept_date"].(time.Time); ok {
		a.AcceptDate = &accept
	}
	f.docs[a.ApartmentNo] = a
	return mongo.NewSingleResultFromDocument(a, nil, nil)
}

func (f *fakeAgreementColl) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	a := document.(*model.Agreement)
	if _, exists := f.docs[a.ApartmentNo]; exists {
		// Same shape the server reports for a unique apartment_no violation.
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	id := primitive.NewObjectID()
	stored := *a
	stored.ID = id
	f.docs[a.ApartmentNo] = stored
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (f *fakeAgreementColl) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if a, ok := f.lookup(filter.(bson.M)); ok {
		delete(f.docs, a.ApartmentNo)
		return &mongo.DeleteResult{DeletedCount: 1}, nil
	}
	return &mongo.DeleteResult{}, nil
}

func TestAgreementRepository_SetChecked(t *testing.T) {
	coll := newFakeAgreementColl(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementPending,
		Rent:        1200,
	})
	repo := NewAgreementRepository(coll)

	accept := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.SetChecked(context.Background(), "A-101", accept)

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.AgreementChecked, updated.Status)
	require.NotNil(t, updated.AcceptDate)
	assert.True(t, accept.Equal(*updated.AcceptDate))
	assert.Equal(t, int64(1200), updated.Rent)
}

func TestAgreementRepository_SetChecked_Missing(t *testing.T) {
	repo := NewAgreementRepository(newFakeAgreementColl())

	updated, err := repo.SetChecked(context.Background(), "Z-999", time.Now())

	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestAgreementRepository_FindByEmail(t *testing.T) {
	repo := NewAgreementRepository(newFakeAgreementColl(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementPending,
	}))

	agreement, err := repo.FindByEmail(context.Background(), "tenant@taj.apart")

	require.NoError(t, err)
	require.NotNil(t, agreement)
	assert.Equal(t, "A-101", agreement.ApartmentNo)
}

func TestAgreementRepository_FindCheckedByEmail_IgnoresPending(t *testing.T) {
	accept := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := NewAgreementRepository(newFakeAgreementColl(
		model.Agreement{
			ApartmentNo: "B-202",
			UserEmail:   "tenant@taj.apart",
			Status:      model.AgreementPending,
		},
		model.Agreement{
			ApartmentNo: "A-101",
			UserEmail:   "tenant@taj.apart",
			Status:      model.AgreementChecked,
			AcceptDate:  &accept,
		},
	))

	agreement, err := repo.FindCheckedByEmail(context.Background(), "tenant@taj.apart")

	require.NoError(t, err)
	require.NotNil(t, agreement)
	assert.Equal(t, "A-101", agreement.ApartmentNo)
	assert.Equal(t, model.AgreementChecked, agreement.Status)

	agreement, err = repo.FindCheckedByEmail(context.Background(), "ghost@taj.apart")
	require.NoError(t, err)
	assert.Nil(t, agreement)
}

func TestAgreementRepository_Insert_DuplicateApartment(t *testing.T) {
	repo := NewAgreementRepository(newFakeAgreementColl(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementPending,
	}))

	err := repo.Insert(context.Background(), &model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "rival@taj.apart",
		Status:      model.AgreementPending,
	})

	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestAgreementRepository_DeleteByID(t *testing.T) {
	coll := newFakeAgreementColl(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementChecked,
	})
	repo := NewAgreementRepository(coll)
	id := coll.docs["A-101"].ID

	deleted, err := repo.DeleteByID(context.Background(), id)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, coll.docs)

	deleted, err = repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
