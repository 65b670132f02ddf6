// Package payment records payments against bills and handles admin review.
package payment

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService is the application service for payments
type PaymentService struct {
	settlement payment.SettlementScope
	payments   payment.Repository
	policy     *access.Policy
	publisher  shared.EventPublisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	settlement payment.SettlementScope,
	payments payment.Repository,
	policy *access.Policy,
	publisher shared.EventPublisher,
) *PaymentService {
	return &PaymentService{
		settlement: settlement,
		payments:   payments,
		policy:     policy,
		publisher:  publisher,
	}
}

// RecordPayment inserts a completed payment and marks its bill paid in one
// transaction. The payment's customer is always copied from the bill.
func (s *PaymentService) RecordPayment(ctx context.Context, principal identity.Principal, billID uuid.UUID, input RecordPaymentInput) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String(), telemetry.SpanAttrRole, string(principal.Role))

	if err := s.policy.Authorize(principal, access.ActionPaymentRecord); err != nil {
		return nil, err
	}
	details := input.details()
	if err := details.Validate(); err != nil {
		return nil, err
	}

	var (
		bill *billing.Bill
		paid *payment.Payment
	)
	err := s.settlement.Execute(ctx, func(tx payment.Settlement) error {
		var err error
		bill, err = tx.Bills.FindByID(ctx, billID)
		if err != nil {
			return err
		}
		if err := s.policy.CheckOwnership(principal, bill.CustomerID); err != nil {
			return err
		}

		paid, err = payment.NewPayment(bill.ID, bill.CustomerID, details)
		if err != nil {
			return err
		}
		if err := tx.Payments.Create(ctx, paid); err != nil {
			return err
		}

		bill.MarkPaid(paid.ID)
		return tx.Bills.UpdateStatus(ctx, bill.ID, bill.Status)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("Payment not recorded", zap.String("bill_id", billID.String()), zap.Error(err))
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, paid, bill)
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, paid.ID.String())
	logger.L(ctx).Info("Payment recorded",
		zap.String("payment_id", paid.ID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", paid.Amount.StringFixed(2)),
		zap.String("method", paid.Method.String()),
	)

	return &RecordPaymentResult{Payment: ToPaymentResponse(paid), BillStatus: bill.Status}, nil
}

// ListPayments returns the payments visible to the caller, newest first
func (s *PaymentService) ListPayments(ctx context.Context, principal identity.Principal, filter ListPaymentsFilter) (*PaymentListResult, error) {
	if err := s.policy.Authorize(principal, access.ActionPaymentRead); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidStatus, "Unknown payment status")
	}

	opts := filter.ListOptions.Normalize()
	payments, total, err := s.payments.List(ctx, payment.Filter{
		CustomerID: s.policy.ScopeFor(principal).Narrow(filter.CustomerID),
		BillID:     filter.BillID,
		Status:     filter.Status,
	}, opts)
	if err != nil {
		return nil, err
	}

	items := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, ToPaymentResponse(p))
	}
	result := shared.NewPaginated(items, total, opts)
	return &result, nil
}

// ReviewPayment records an admin's verdict. A failed payment returns a
// paid bill to pending.
func (s *PaymentService) ReviewPayment(ctx context.Context, principal identity.Principal, paymentID uuid.UUID, input ReviewPaymentInput) (*ReviewPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "review")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, paymentID.String())

	if err := s.policy.Authorize(principal, access.ActionPaymentReview); err != nil {
		return nil, err
	}

	var (
		reviewed *payment.Payment
		bill     *billing.Bill
	)
	err := s.settlement.Execute(ctx, func(tx payment.Settlement) error {
		var err error
		reviewed, err = tx.Payments.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := reviewed.Review(principal.ProfileID, input.Status, input.Note); err != nil {
			return err
		}
		if err := tx.Payments.Update(ctx, reviewed); err != nil {
			return err
		}

		bill, err = tx.Bills.FindByID(ctx, reviewed.BillID)
		if err != nil {
			return err
		}
		if reviewed.Status == payment.StatusFailed && bill.ReopenAfterFailedPayment() {
			return tx.Bills.UpdateStatus(ctx, bill.ID, bill.Status)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, reviewed)
	logger.L(ctx).Info("Payment reviewed",
		zap.String("payment_id", reviewed.ID.String()),
		zap.String("status", reviewed.Status.String()),
		zap.String("bill_status", bill.Status.String()),
	)

	return &ReviewPaymentResult{Payment: ToPaymentResponse(reviewed), BillStatus: bill.Status}, nil
}
