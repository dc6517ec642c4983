package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tajapart/internal/model"
	"tajapart/internal/repository"
)

var ErrDuplicateCoupon = errors.New("coupon code already exists")

// CouponCheck is the result of verifying a coupon code.
type CouponCheck struct {
	Valid    bool   `json:"valid"`
	Discount int    `json:"discount,omitempty"`
	Message  string `json:"message,omitempty"`
}

// BillingService records rent payments and manages discount coupons.
type BillingService interface {
	RecordPayment(ctx context.Context, payment model.Payment) (*model.Payment, bool, error)
	ListPayments(ctx context.Context, email string) ([]model.Payment, error)
	CreateCoupon(ctx context.Context, coupon model.Coupon) (*model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	VerifyCoupon(ctx context.Context, code string) (CouponCheck, error)
}

type billingService struct {
	payments repository.PaymentRepository
	coupons  repository.CouponRepository
	logger   *logrus.Entry
}

// NewBillingService creates a new BillingService.
func NewBillingService(payments repository.PaymentRepository, coupons repository.CouponRepository, logger *logrus.Entry) BillingService {
	return &billingService{
		payments: payments,
		coupons:  coupons,
		logger:   logger,
	}
}

// RecordPayment inserts at most one payment per (user_email, month). When a
// payment for that month already exists the boolean is true and nothing is
// written; the stored record is left untouched. User existence is advisory
// only: an unknown email still gets its payment recorded.
func (s *billingService) RecordPayment(ctx context.Context, payment model.Payment) (*model.Payment, bool, error) {
	existing, err := s.payments.FindByUserAndMonth(ctx, payment.UserEmail, payment.Month)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	if err := s.payments.Insert(ctx, &payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			stored, findErr := s.payments.FindByUserAndMonth(ctx, payment.UserEmail, payment.Month)
			if findErr != nil {
				return nil, false, findErr
			}
			if stored != nil {
				return stored, true, nil
			}
		}
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"event":  "payment_recorded",
		"email":  payment.UserEmail,
		"month":  payment.Month,
		"amount": payment.Amount,
	}).Info("rent payment recorded")

	return &payment, false, nil
}

func (s *billingService) ListPayments(ctx context.Context, email string) ([]model.Payment, error) {
	return s.payments.ListByUser(ctx, email)
}

// CreateCoupon stores a new coupon; duplicate codes are rejected.
func (s *billingService) CreateCoupon(ctx context.Context, coupon model.Coupon) (*model.Coupon, error) {
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now().UTC()
	}

	if err := s.coupons.Insert(ctx, &coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

func (s *billingService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	return s.coupons.List(ctx)
}

// VerifyCoupon reports whether a code is redeemable and at what discount.
// Unknown and expired codes are both invalid; neither is an error.
func (s *billingService) VerifyCoupon(ctx context.Context, code string) (CouponCheck, error) {
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return CouponCheck{}, err
	}
	if coupon == nil {
		return CouponCheck{Valid: false, Message: "coupon not found"}, nil
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now().UTC()) {
		return CouponCheck{Valid: false, Message: "coupon expired"}, nil
	}
	return CouponCheck{Valid: true, Discount: coupon.Discount}, nil
}
