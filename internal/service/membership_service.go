package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tajapart/internal/model"
	"tajapart/internal/repository"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAgreementNotFound = errors.New("agreement not found")
	ErrInvalidRole       = errors.New("role must be \"user\" or \"member\"")
	ErrInvalidID         = errors.New("invalid agreement id")
)

// AgreementOutcome describes what UpsertAgreement did with the incoming record.
type AgreementOutcome string

const (
	// AgreementInserted: no agreement existed for the apartment, a new one
	// was stored.
	AgreementInserted AgreementOutcome = "inserted"
	// AgreementUnchanged: an agreement already existed and the incoming
	// status was not "checked"; the stored record was returned as is.
	AgreementUnchanged AgreementOutcome = "unchanged"
	// AgreementAccepted: the existing agreement transitioned to "checked"
	// and the occupant was promoted to member.
	AgreementAccepted AgreementOutcome = "accepted"
	// AgreementSkipped: the occupant email did not resolve to a user, so no
	// write happened. This is a signal for the caller, not an error.
	AgreementSkipped AgreementOutcome = "skipped"
)

// MembershipService keeps a user's role consistent with the lifecycle of
// their rental agreement.
type MembershipService interface {
	UpsertUser(ctx context.Context, user model.User) (*model.User, bool, error)
	SetUserRole(ctx context.Context, email, role string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpsertAgreement(ctx context.Context, agreement model.Agreement) (*model.Agreement, AgreementOutcome, error)
	GetAgreementByEmail(ctx context.Context, email string) (*model.Agreement, error)
	DeleteAgreement(ctx context.Context, id string) error
}

type membershipService struct {
	users      repository.UserRepository
	agreements repository.AgreementRepository
	logger     *logrus.Entry
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(users repository.UserRepository, agreements repository.AgreementRepository, logger *logrus.Entry) MembershipService {
	return &membershipService{
		users:      users,
		agreements: agreements,
		logger:     logger,
	}
}

// UpsertUser inserts the user on first sign-in. If a record already exists
// for the email the call is idempotent: the stored record is returned
// unchanged and the role is never overwritten by a blind upsert. The boolean
// reports whether an insert happened.
func (s *membershipService) UpsertUser(ctx context.Context, user model.User) (*model.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if !model.ValidRole(user.Role) {
		user.Role = model.RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.users.Insert(ctx, &user); err != nil {
		// A concurrent sign-in can win the insert; the unique email index
		// turns that into a duplicate key, so fall back to the stored record.
		if errors.Is(err, repository.ErrDuplicateKey) {
			stored, findErr := s.users.FindByEmail(ctx, user.Email)
			if findErr != nil {
				return nil, false, findErr
			}
			if stored != nil {
				return stored, false, nil
			}
		}
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"event": "user_registered",
		"email": user.Email,
		"role":  user.Role,
	}).Info("registered new user")

	return &user, true, nil
}

// SetUserRole updates only the role field for an existing user.
func (s *membershipService) SetUserRole(ctx context.Context, email, role string) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleMember {
		return nil, ErrInvalidRole
	}

	matched, err := s.users.UpdateRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrUserNotFound
	}

	return s.users.FindByEmail(ctx, email)
}

func (s *membershipService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *membershipService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UpsertAgreement applies the agreement state machine for one apartment:
//
//	no agreement -> pending -> checked
//
// When the occupant email does not resolve to a user the write is skipped and
// AgreementSkipped is returned. When an agreement already exists for the
// apartment, an incoming "checked" status updates only status and accept_date
// and promotes the occupant; any other incoming record leaves the stored one
// untouched. Reconciliation runs after every mutation.
func (s *membershipService) UpsertAgreement(ctx context.Context, agreement model.Agreement) (*model.Agreement, AgreementOutcome, error) {
	occupant, err := s.users.FindByEmail(ctx, agreement.UserEmail)
	if err != nil {
		return nil, "", err
	}
	if occupant == nil {
		s.logger.WithFields(logrus.Fields{
			"event":        "agreement_skipped",
			"email":        agreement.UserEmail,
			"apartment_no": agreement.ApartmentNo,
		}).Warn("occupant email does not resolve to a user, skipping agreement write")
		return nil, AgreementSkipped, nil
	}

	existing, err := s.agreements.FindByApartmentNo(ctx, agreement.ApartmentNo)
	if err != nil {
		return nil, "", err
	}

	if existing != nil {
		if agreement.Status != model.AgreementChecked {
			return existing, AgreementUnchanged, nil
		}

		acceptDate := time.Now().UTC()
		if agreement.AcceptDate != nil {
			acceptDate = *agreement.AcceptDate
		}
		updated, err := s.agreements.SetChecked(ctx, agreement.ApartmentNo, acceptDate)
		if err != nil {
			return nil, "", err
		}
		if updated == nil {
			// Deleted between the read and the write; treat as absent.
			return nil, AgreementSkipped, nil
		}
		if err := s.reconcile(ctx, updated.UserEmail); err != nil {
			return nil, "", err
		}

		s.logger.WithFields(logrus.Fields{
			"event":        "agreement_accepted",
			"email":        updated.UserEmail,
			"apartment_no": updated.ApartmentNo,
		}).Info("agreement checked, occupant promoted")

		return updated, AgreementAccepted, nil
	}

	if agreement.Status == "" {
		agreement.Status = model.AgreementPending
	}
	if agreement.RequestDate.IsZero() {
		agreement.RequestDate = time.Now().UTC()
	}

	if err := s.agreements.Insert(ctx, &agreement); err != nil {
		// A concurrent request for the same apartment can win; the unique
		// apartment_no index rejects the second insert.
		if errors.Is(err, repository.ErrDuplicateKey) {
			stored, findErr := s.agreements.FindByApartmentNo(ctx, agreement.ApartmentNo)
			if findErr != nil {
				return nil, "", findErr
			}
			if stored != nil {
				return stored, AgreementUnchanged, nil
			}
		}
		return nil, "", err
	}

	if err := s.reconcile(ctx, agreement.UserEmail); err != nil {
		return nil, "", err
	}

	return &agreement, AgreementInserted, nil
}

func (s *membershipService) GetAgreementByEmail(ctx context.Context, email string) (*model.Agreement, error) {
	return s.agreements.FindByEmail(ctx, email)
}

// DeleteAgreement removes an agreement by id and demotes the former occupant
// back to "user" through reconciliation.
func (s *membershipService) DeleteAgreement(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	agreement, err := s.agreements.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if agreement == nil {
		return ErrAgreementNotFound
	}

	deleted, err := s.agreements.DeleteByID(ctx, oid)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAgreementNotFound
	}

	if err := s.reconcile(ctx, agreement.UserEmail); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"event":        "agreement_deleted",
		"email":        agreement.UserEmail,
		"apartment_no": agreement.ApartmentNo,
	}).Info("agreement deleted, occupant reconciled")

	return nil
}

// reconcile makes the user's role consistent with their agreement state: a
// checked agreement means member, anything else means user. Guests are left
// alone, and missing users are a no-op. Invoked after every agreement
// mutation so promotion and demotion stay symmetric.
func (s *membershipService) reconcile(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Role == model.RoleGuest {
		return nil
	}

	checked, err := s.agreements.FindCheckedByEmail(ctx, email)
	if err != nil {
		return err
	}

	target := model.RoleUser
	if checked != nil {
		target = model.RoleMember
	}

	if user.Role == target {
		return nil
	}

	if _, err := s.users.UpdateRole(ctx, email, target); err != nil {
		return fmt.Errorf("reconcile role for %s: %w", email, err)
	}

	s.logger.WithFields(logrus.Fields{
		"event": "role_reconciled",
		"email": email,
		"from":  user.Role,
		"to":    target,
	}).Info("user role reconciled with agreement state")

	return nil
}
