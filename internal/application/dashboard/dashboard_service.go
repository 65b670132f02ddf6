// Package dashboard aggregates portal figures for the admin and customer
// landing pages.
package dashboard

import (
	"context"
	"errors"

	billingapp "github.com/aquaportal/backend/internal/application/billing"
	"github.com/aquaportal/backend/internal/domain/access"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/shared/valueobject"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/aquaportal/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// Overview is the admin dashboard
type Overview struct {
	TotalCustomers        int64           `json:"total_customers"`
	TotalBills            int64           `json:"total_bills"`
	PendingBills          int64           `json:"pending_bills"`
	OverdueBills          int64           `json:"overdue_bills"`
	TotalCollected        decimal.Decimal `json:"total_collected"`
	TotalCollectedDisplay string          `json:"total_collected_display"`
	PendingComplaints     int64           `json:"pending_complaints"`
}

// CustomerSummary is a customer's own dashboard
type CustomerSummary struct {
	OutstandingBalance        decimal.Decimal          `json:"outstanding_balance"`
	OutstandingBalanceDisplay string                   `json:"outstanding_balance_display"`
	UnpaidBills               int64                    `json:"unpaid_bills"`
	LatestBill                *billingapp.BillResponse `json:"latest_bill,omitempty"`
	OpenComplaints            int64                    `json:"open_complaints"`
}

// Service computes dashboard figures
type Service struct {
	profiles   identity.ProfileRepository
	bills      billing.BillRepository
	payments   payment.Repository
	complaints support.ComplaintRepository
	policy     *access.Policy
}

// NewService creates a new dashboard service
func NewService(
	profiles identity.ProfileRepository,
	bills billing.BillRepository,
	payments payment.Repository,
	complaints support.ComplaintRepository,
	policy *access.Policy,
) *Service {
	return &Service{
		profiles:   profiles,
		bills:      bills,
		payments:   payments,
		complaints: complaints,
		policy:     policy,
	}
}

// Overview returns portal-wide totals. Collected money counts completed
// payments only; pending complaints count the open state only.
func (s *Service) Overview(ctx context.Context, principal identity.Principal) (*Overview, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "overview")
	defer span.End()

	if err := s.policy.Authorize(principal, access.ActionDashboardAdmin); err != nil {
		return nil, err
	}

	var (
		out Overview
		err error
	)
	if out.TotalCustomers, err = s.profiles.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if out.TotalBills, err = s.bills.Count(ctx, billing.BillFilter{}); err != nil {
		return nil, err
	}
	if out.PendingBills, err = s.countBills(ctx, billing.BillStatusPending); err != nil {
		return nil, err
	}
	if out.OverdueBills, err = s.countBills(ctx, billing.BillStatusOverdue); err != nil {
		return nil, err
	}

	completed := payment.StatusCompleted
	if out.TotalCollected, err = s.payments.SumAmount(ctx, payment.Filter{Status: &completed}); err != nil {
		return nil, err
	}
	out.TotalCollectedDisplay = valueobject.KESAmount(out.TotalCollected).Format()

	open := support.ComplaintStatusOpen
	if out.PendingComplaints, err = s.complaints.Count(ctx, support.ComplaintFilter{Status: &open}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomerSummary returns the caller's balance, unpaid bills, latest bill
// and open complaints. Outstanding balance is the sum of pending and
// overdue bills.
func (s *Service) CustomerSummary(ctx context.Context, principal identity.Principal) (*CustomerSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "customer_summary")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, principal.ProfileID.String())

	if err := s.policy.Authorize(principal, access.ActionDashboardCustomer); err != nil {
		return nil, err
	}
	customerID := s.policy.ScopeFor(principal).CustomerFilter()

	out := CustomerSummary{OutstandingBalance: decimal.Zero}
	for _, status := range []billing.BillStatus{billing.BillStatusPending, billing.BillStatusOverdue} {
		st := status
		filter := billing.BillFilter{CustomerID: customerID, Status: &st}
		sum, err := s.bills.SumAmount(ctx, filter)
		if err != nil {
			return nil, err
		}
		count, err := s.bills.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
		out.OutstandingBalance = out.OutstandingBalance.Add(sum)
		out.UnpaidBills += count
	}
	out.OutstandingBalanceDisplay = valueobject.KESAmount(out.OutstandingBalance).Format()

	latest, err := s.bills.FindLatestForCustomer(ctx, principal.ProfileID)
	switch {
	case err == nil:
		resp := billingapp.ToBillResponse(latest)
		out.LatestBill = &resp
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	open := support.ComplaintStatusOpen
	if out.OpenComplaints, err = s.complaints.Count(ctx, support.ComplaintFilter{CustomerID: customerID, Status: &open}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) countBills(ctx context.Context, status billing.BillStatus) (int64, error) {
	return s.bills.Count(ctx, billing.BillFilter{Status: &status})
}
