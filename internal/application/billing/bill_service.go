// Package billing issues bills, revises readings and sweeps overdue bills.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/event"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillServiceConfig holds tariff and lifecycle settings
type BillServiceConfig struct {
	DefaultRatePerUnit decimal.Decimal
	ReadingPolicy      billing.ReadingPolicy
	DueDays            int
	// OverdueBatchSize bounds how many bills one sweep query loads
	OverdueBatchSize int
}

// DefaultBillServiceConfig returns the portal's standard tariff settings
func DefaultBillServiceConfig() BillServiceConfig {
	return BillServiceConfig{
		DefaultRatePerUnit: billing.DefaultRatePerUnit,
		ReadingPolicy:      billing.ReadingPolicyPreserve,
		DueDays:            14,
		OverdueBatchSize:   500,
	}
}

// BillService is the application service for bills
type BillService struct {
	bills     billing.BillRepository
	profiles  identity.ProfileRepository
	policy    *access.Policy
	publisher shared.EventPublisher
	config    BillServiceConfig
	now       func() time.Time
}

// NewBillService creates a new bill service
func NewBillService(
	bills billing.BillRepository,
	profiles identity.ProfileRepository,
	policy *access.Policy,
	publisher shared.EventPublisher,
	config BillServiceConfig,
) *BillService {
	if !config.ReadingPolicy.IsValid() {
		config.ReadingPolicy = billing.ReadingPolicyPreserve
	}
	if config.OverdueBatchSize <= 0 {
		config.OverdueBatchSize = 500
	}
	return &BillService{
		bills:     bills,
		profiles:  profiles,
		policy:    policy,
		publisher: publisher,
		config:    config,
		now:       time.Now,
	}
}

// CreateBill issues a pending bill for a customer
func (s *BillService) CreateBill(ctx context.Context, principal identity.Principal, input CreateBillInput) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "create_bill")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, input.CustomerID.String())

	if err := s.policy.Authorize(principal, access.ActionBillCreate); err != nil {
		return nil, err
	}

	customer, err := s.findCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	meter := customer.MeterNumberOrEmpty()
	if input.MeterNumber != nil && *input.MeterNumber != "" {
		meter = *input.MeterNumber
	}

	previous, err := s.previousReading(ctx, customer.ID, input.PreviousReading)
	if err != nil {
		return nil, err
	}

	rate := s.config.DefaultRatePerUnit
	if input.RatePerUnit != nil {
		rate = *input.RatePerUnit
	}

	dueDate := s.now().AddDate(0, 0, s.config.DueDays)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	bill, err := billing.NewBill(billing.NewBillInput{
		CustomerID:      customer.ID,
		MeterNumber:     meter,
		PreviousReading: previous,
		CurrentReading:  input.CurrentReading,
		RatePerUnit:     rate,
		BillingMonth:    input.BillingMonth,
		DueDate:         dueDate,
		Policy:          s.config.ReadingPolicy,
	})
	if err != nil {
		return nil, err
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Failed to create bill", zap.Error(err))
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, bill)
	logger.L(ctx).Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("customer_id", bill.CustomerID.String()),
		zap.String("amount", bill.Amount.StringFixed(2)),
	)
	if bill.UnitsConsumed.IsNegative() {
		logger.L(ctx).Warn("Bill stored with negative consumption",
			zap.String("bill_id", bill.ID.String()),
			zap.String("units", bill.UnitsConsumed.String()),
		)
	}

	resp := ToBillResponse(bill)
	return &resp, nil
}

// ReviseReadings corrects readings or rate and recomputes the charge
func (s *BillService) ReviseReadings(ctx context.Context, principal identity.Principal, billID uuid.UUID, input ReviseReadingsInput) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "revise_readings")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	if err := s.policy.Authorize(principal, access.ActionBillRevise); err != nil {
		return nil, err
	}
	if input.PreviousReading == nil && input.CurrentReading == nil && input.RatePerUnit == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "No readings to revise")
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := bill.ReviseReadings(input.PreviousReading, input.CurrentReading, input.RatePerUnit, s.config.ReadingPolicy); err != nil {
		return nil, err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	event.PublishDomainEvents(ctx, s.publisher, bill)
	logger.L(ctx).Info("Bill readings revised",
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", bill.Amount.StringFixed(2)),
	)

	resp := ToBillResponse(bill)
	return &resp, nil
}

// ListBills returns the bills visible to the caller, newest first
func (s *BillService) ListBills(ctx context.Context, principal identity.Principal, filter ListBillsFilter) (*BillListResult, error) {
	if err := s.policy.Authorize(principal, access.ActionBillRead); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidStatus, "Unknown bill status")
	}

	opts := filter.ListOptions.Normalize()
	bills, total, err := s.bills.List(ctx, billing.BillFilter{
		CustomerID: s.policy.ScopeFor(principal).Narrow(filter.CustomerID),
		Status:     filter.Status,
	}, opts)
	if err != nil {
		return nil, err
	}

	items := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		items = append(items, ToBillResponse(b))
	}
	result := shared.NewPaginated(items, total, opts)
	return &result, nil
}

// GetBill returns one bill. Bills of other customers are reported as not found.
func (s *BillService) GetBill(ctx context.Context, principal identity.Principal, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwned(principal, access.ActionBillRead, bill.CustomerID); err != nil {
		return nil, err
	}

	resp := ToBillResponse(bill)
	return &resp, nil
}

// MarkOverdue flags every pending bill whose due date is before now and
// returns how many changed. It stops at the first write failure.
func (s *BillService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "mark_overdue")
	defer span.End()

	marked := 0
	for {
		bills, err := s.bills.FindPendingDueBefore(ctx, now, s.config.OverdueBatchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return marked, err
		}
		batchMarked := 0
		for _, bill := range bills {
			if err := bill.MarkOverdue(now); err != nil {
				continue
			}
			changed, err := s.bills.TransitionStatus(ctx, bill.ID, billing.BillStatusPending, bill.Status)
			if err != nil {
				telemetry.RecordError(span, err)
				return marked, err
			}
			// settled or revised since it was read
			if !changed {
				bill.ClearDomainEvents()
				continue
			}
			event.PublishDomainEvents(ctx, s.publisher, bill)
			batchMarked++
		}
		marked += batchMarked
		if len(bills) < s.config.OverdueBatchSize || batchMarked == 0 {
			break
		}
	}

	telemetry.SetAttributes(span, "marked", marked)
	return marked, nil
}

func (s *BillService) findCustomer(ctx context.Context, customerID uuid.UUID) (*identity.Profile, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is required")
	}
	customer, err := s.profiles.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Customer not found")
		}
		return nil, err
	}
	if customer.IsAdmin {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Bills can only be issued to customer profiles")
	}
	return customer, nil
}

func (s *BillService) previousReading(ctx context.Context, customerID uuid.UUID, supplied *decimal.Decimal) (decimal.Decimal, error) {
	if supplied != nil {
		return *supplied, nil
	}
	latest, err := s.bills.FindLatestForCustomer(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return latest.CurrentReading, nil
}
