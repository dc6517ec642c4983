package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tajapart/internal/model"
	"tajapart/internal/repository"
)

func testLogger() *logrus.Entry {
	l, _ := logtest.NewNullLogger()
	return logrus.NewEntry(l)
}

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	users map[string]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]model.User)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.users[email]; ok {
		copied := u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Insert(_ context.Context, user *model.User) error {
	user.ID = primitive.NewObjectID()
	f.users[user.Email] = *user
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, email, role string) (bool, error) {
	u, ok := f.users[email]
	if !ok {
		return false, nil
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	f.users[email] = u
	return true, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

// fakeAgreementRepo is an in-memory AgreementRepository keyed by apartment_no.
type fakeAgreementRepo struct {
	agreements map[string]model.Agreement
}

func newFakeAgreementRepo(agreements ...model.Agreement) *fakeAgreementRepo {
	repo := &fakeAgreementRepo{agreements: make(map[string]model.Agreement)}
	for _, a := range agreements {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		repo.agreements[a.ApartmentNo] = a
	}
	return repo
}

func (f *fakeAgreementRepo) FindByApartmentNo(_ context.Context, apartmentNo string) (*model.Agreement, error) {
	if a, ok := f.agreements[apartmentNo]; ok {
		copied := a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAgreementRepo) FindByEmail(_ context.Context, email string) (*model.Agreement, error) {
	for _, a := range f.agreements {
		if a.UserEmail == email {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAgreementRepo) FindCheckedByEmail(_ context.Context, email string) (*model.Agreement, error) {
	for _, a := range f.agreements {
		if a.UserEmail == email && a.Status == model.AgreementChecked {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAgreementRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Agreement, error) {
	for _, a := range f.agreements {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAgreementRepo) Insert(_ context.Context, agreement *model.Agreement) error {
	agreement.ID = primitive.NewObjectID()
	f.agreements[agreement.ApartmentNo] = *agreement
	return nil
}

func (f *fakeAgreementRepo) SetChecked(_ context.Context, apartmentNo string, acceptDate time.Time) (*model.Agreement, error) {
	a, ok := f.agreements[apartmentNo]
	if !ok {
		return nil, nil
	}
	a.Status = model.AgreementChecked
	a.AcceptDate = &acceptDate
	f.agreements[apartmentNo] = a
	copied := a
	return &copied, nil
}

func (f *fakeAgreementRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (bool, error) {
	for no, a := range f.agreements {
		if a.ID == id {
			delete(f.agreements, no)
			return true, nil
		}
	}
	return false, nil
}

// racingUserRepo simulates a concurrent sign-in winning the insert: the first
// lookup misses, the insert hits the unique email index, and the stored record
// is only visible on the retry lookup.
type racingUserRepo struct {
	*fakeUserRepo
	missed bool
}

func (r *racingUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if !r.missed {
		r.missed = true
		return nil, nil
	}
	return r.fakeUserRepo.FindByEmail(ctx, email)
}

func (r *racingUserRepo) Insert(context.Context, *model.User) error {
	return repository.ErrDuplicateKey
}

// racingAgreementRepo does the same for the agreements ledger, where the
// unique apartment_no index rejects the losing insert.
type racingAgreementRepo struct {
	*fakeAgreementRepo
	missed bool
}

func (r *racingAgreementRepo) FindByApartmentNo(ctx context.Context, apartmentNo string) (*model.Agreement, error) {
	if !r.missed {
		r.missed = true
		return nil, nil
	}
	return r.fakeAgreementRepo.FindByApartmentNo(ctx, apartmentNo)
}

func (r *racingAgreementRepo) Insert(context.Context, *model.Agreement) error {
	return repository.ErrDuplicateKey
}

func TestUpsertUser_InsertsWithDefaultRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewMembershipService(users, newFakeAgreementRepo(), testLogger())

	user, inserted, err := svc.UpsertUser(context.Background(), model.User{Email: "new@taj.apart", Name: "New Tenant"})

	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUpsertUser_IdempotentKeepsRole(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "member@taj.apart", Role: model.RoleMember})
	svc := NewMembershipService(users, newFakeAgreementRepo(), testLogger())

	// A blind upsert must never overwrite the stored role.
	user, inserted, err := svc.UpsertUser(context.Background(), model.User{Email: "member@taj.apart", Role: model.RoleUser})

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, model.RoleMember, user.Role)
	assert.Equal(t, model.RoleMember, users.users["member@taj.apart"].Role)
}

func TestUpsertUser_DuplicateInsertFallsBackToStored(t *testing.T) {
	users := &racingUserRepo{fakeUserRepo: newFakeUserRepo(
		model.User{Email: "member@taj.apart", Role: model.RoleMember},
	)}
	svc := NewMembershipService(users, newFakeAgreementRepo(), testLogger())

	user, inserted, err := svc.UpsertUser(context.Background(), model.User{Email: "member@taj.apart"})

	require.NoError(t, err)
	assert.False(t, inserted)
	require.NotNil(t, user)
	assert.Equal(t, model.RoleMember, user.Role)
}

func TestSetUserRole_NotFound(t *testing.T) {
	svc := NewMembershipService(newFakeUserRepo(), newFakeAgreementRepo(), testLogger())

	_, err := svc.SetUserRole(context.Background(), "ghost@taj.apart", model.RoleMember)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUserRole_RejectsInvalidRole(t *testing.T) {
	svc := NewMembershipService(newFakeUserRepo(), newFakeAgreementRepo(), testLogger())

	_, err := svc.SetUserRole(context.Background(), "a@taj.apart", "admin")

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpsertAgreement_SkipsUnknownOccupant(t *testing.T) {
	agreements := newFakeAgreementRepo()
	svc := NewMembershipService(newFakeUserRepo(), agreements, testLogger())

	record, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "unknown@taj.apart",
	})

	require.NoError(t, err)
	assert.Equal(t, AgreementSkipped, outcome)
	assert.Nil(t, record)
	assert.Empty(t, agreements.agreements)
}

func TestUpsertAgreement_InsertsPending(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "tenant@taj.apart", Role: model.RoleUser})
	agreements := newFakeAgreementRepo()
	svc := NewMembershipService(users, agreements, testLogger())

	record, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Rent:        1200,
	})

	require.NoError(t, err)
	assert.Equal(t, AgreementInserted, outcome)
	assert.Equal(t, model.AgreementPending, record.Status)
	assert.False(t, record.RequestDate.IsZero())
	assert.Nil(t, record.AcceptDate)
}

func TestUpsertAgreement_SecondPendingCallIsIdempotent(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "tenant@taj.apart", Role: model.RoleUser})
	svc := NewMembershipService(users, newFakeAgreementRepo(), testLogger())

	request := model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Rent:        1200,
	}

	first, outcome, err := svc.UpsertAgreement(context.Background(), request)
	require.NoError(t, err)
	require.Equal(t, AgreementInserted, outcome)

	second, outcome, err := svc.UpsertAgreement(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, AgreementUnchanged, outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UserEmail, second.UserEmail)
	assert.Equal(t, first.Rent, second.Rent)
}

func TestUpsertAgreement_OccupiedApartmentRejectsOtherOccupant(t *testing.T) {
	users := newFakeUserRepo(
		model.User{Email: "tenant@taj.apart", Role: model.RoleUser},
		model.User{Email: "rival@taj.apart", Role: model.RoleUser},
	)
	svc := NewMembershipService(users, newFakeAgreementRepo(), testLogger())

	first, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Rent:        1200,
	})
	require.NoError(t, err)
	require.Equal(t, AgreementInserted, outcome)

	// A different tenant asking for an occupied apartment gets the stored
	// record back untouched.
	second, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "rival@taj.apart",
		Rent:        9999,
	})

	require.NoError(t, err)
	assert.Equal(t, AgreementUnchanged, outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "tenant@taj.apart", second.UserEmail)
	assert.Equal(t, int64(1200), second.Rent)
}

func TestUpsertAgreement_DuplicateInsertFallsBackToStored(t *testing.T) {
	users := newFakeUserRepo(
		model.User{Email: "tenant@taj.apart", Role: model.RoleUser},
		model.User{Email: "rival@taj.apart", Role: model.RoleUser},
	)
	stored := model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Rent:        1200,
		Status:      model.AgreementPending,
	}
	agreements := &racingAgreementRepo{fakeAgreementRepo: newFakeAgreementRepo(stored)}
	svc := NewMembershipService(users, agreements, testLogger())

	record, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "rival@taj.apart",
		Rent:        9999,
	})

	require.NoError(t, err)
	assert.Equal(t, AgreementUnchanged, outcome)
	require.NotNil(t, record)
	assert.Equal(t, "tenant@taj.apart", record.UserEmail)
	assert.Equal(t, int64(1200), record.Rent)
}

func TestUpsertAgreement_CheckedPromotesOccupant(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "tenant@taj.apart", Role: model.RoleUser})
	requestDate := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	agreements := newFakeAgreementRepo(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Rent:        1200,
		Status:      model.AgreementPending,
		RequestDate: requestDate,
	})
	svc := NewMembershipService(users, agreements, testLogger())

	record, outcome, err := svc.UpsertAgreement(context.Background(), model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementChecked,
	})

	require.NoError(t, err)
	assert.Equal(t, AgreementAccepted, outcome)
	assert.Equal(t, model.AgreementChecked, record.Status)
	require.NotNil(t, record.AcceptDate)

	// Only status and accept_date change; occupant and apartment fields stay.
	assert.Equal(t, "tenant@taj.apart", record.UserEmail)
	assert.Equal(t, "A-101", record.ApartmentNo)
	assert.Equal(t, int64(1200), record.Rent)
	assert.Equal(t, requestDate, record.RequestDate)

	assert.Equal(t, model.RoleMember, users.users["tenant@taj.apart"].Role)
}

func TestDeleteAgreement_DemotesOccupant(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "tenant@taj.apart", Role: model.RoleMember})
	accept := time.Now().UTC()
	agreements := newFakeAgreementRepo(model.Agreement{
		ApartmentNo: "A-101",
		UserEmail:   "tenant@taj.apart",
		Status:      model.AgreementChecked,
		AcceptDate:  &accept,
	})
	svc := NewMembershipService(users, agreements, testLogger())

	id := agreements.agreements["A-101"].ID
	err := svc.DeleteAgreement(context.Background(), id.Hex())

	require.NoError(t, err)
	assert.Empty(t, agreements.agreements)
	assert.Equal(t, model.RoleUser, users.users["tenant@taj.apart"].Role)
}

func TestDeleteAgreement_KeepsMemberWithOtherCheckedAgreement(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "tenant@taj.apart", Role: model.RoleMember})
	accept := time.Now().UTC()
	agreements := newFakeAgreementRepo(
		model.Agreement{
			ApartmentNo: "A-101",
			UserEmail:   "tenant@taj.apart",
			Status:      model.AgreementChecked,
			AcceptDate:  &accept,
		},
		model.Agreement{
			ApartmentNo: "B-202",
			UserEmail:   "tenant@taj.apart",
			Status:      model.AgreementPending,
		},
	)
	svc := NewMembershipService(users, agreements, testLogger())

	// Dropping the pending request must not demote a member who still holds
	// a checked agreement elsewhere.
	id := agreements.agreements["B-202"].ID
	err := svc.DeleteAgreement(context.Background(), id.Hex())

	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, users.users["tenant@taj.apart"].Role)
}

func TestDeleteAgreement_NotFound(t *testing.T) {
	svc := NewMembershipService(newFakeUserRepo(), newFakeAgreementRepo(), testLogger())

	err := svc.DeleteAgreement(context.Background(), primitive.NewObjectID().Hex())

	assert.ErrorIs(t, err, ErrAgreementNotFound)
}

func TestDeleteAgreement_InvalidID(t *testing.T) {
	svc := NewMembershipService(newFakeUserRepo(), newFakeAgreementRepo(), testLogger())

	err := svc.DeleteAgreement(context.Background(), "not-a-hex-id")

	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDeleteAgreement_LeavesGuestAlone(t *testing.T) {
	users := newFakeUserRepo(model.User{Email: "guest@taj.apart", Role: model.RoleGuest})
	agreements := newFakeAgreementRepo(model.Agreement{
		ApartmentNo: "B-202",
		UserEmail:   "guest@taj.apart",
		Status:      model.AgreementPending,
	})
	svc := NewMembershipService(users, agreements, testLogger())

	id := agreements.agreements["B-202"].ID
	err := svc.DeleteAgreement(context.Background(), id.Hex())

	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, users.users["guest@taj.apart"].Role)
}
