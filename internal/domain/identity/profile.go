package identity

import (
	"strings"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Profile is the application-level identity record: contact and meter
// metadata plus the flag that separates customers from administrators.
type Profile struct {
	shared.BaseAggregateRoot
	UserID      uuid.UUID
	FullName    string
	Phone       string
	Address     string
	MeterNumber *string
	IsAdmin     bool
}

// ContactDetails are the fields a customer may change on their own profile.
// Nil fields are left untouched.
type ContactDetails struct {
	FullName *string
	Phone    *string
	Address  *string
}

// NewProfile creates the customer profile that accompanies a new account
func NewProfile(userID uuid.UUID, fullName string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Profile must belong to an account")
	}
	fullName = strings.TrimSpace(fullName)
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}

	p := &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		FullName:          fullName,
	}
	p.AddDomainEvent(NewProfileRegisteredEvent(p))
	return p, nil
}

// Role derives the caller role from the admin flag
func (p *Profile) Role() Role {
	if p.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

// NewProfileWithContact creates a profile and sets the optional phone and
// address given at registration
func NewProfileWithContact(userID uuid.UUID, fullName, phone, address string) (*Profile, error) {
	p, err := NewProfile(userID, fullName)
	if err != nil {
		return nil, err
	}
	if err := p.applyContact(ContactDetails{Phone: &phone, Address: &address}); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateContact applies the non-nil contact fields
func (p *Profile) UpdateContact(details ContactDetails) error {
	if err := p.applyContact(details); err != nil {
		return err
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileUpdatedEvent(p))
	return nil
}

func (p *Profile) applyContact(details ContactDetails) error {
	if details.FullName != nil {
		name := strings.TrimSpace(*details.FullName)
		if err := validateFullName(name); err != nil {
			return err
		}
		p.FullName = name
	}
	if details.Phone != nil {
		phone := strings.TrimSpace(*details.Phone)
		if len(phone) > 50 {
			return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
		}
		p.Phone = phone
	}
	if details.Address != nil {
		addr := strings.TrimSpace(*details.Address)
		if len(addr) > 500 {
			return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
		}
		p.Address = addr
	}
	return nil
}

// AssignMeter sets or clears the meter number. An empty string clears it.
func (p *Profile) AssignMeter(meterNumber string) error {
	meterNumber = strings.TrimSpace(meterNumber)
	if meterNumber == "" {
		p.MeterNumber = nil
	} else {
		if len(meterNumber) > 50 {
			return shared.NewDomainError("INVALID_METER_NUMBER", "Meter number cannot exceed 50 characters")
		}
		p.MeterNumber = &meterNumber
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileUpdatedEvent(p))
	return nil
}

// SetAdmin grants or revokes administrator rights
func (p *Profile) SetAdmin(isAdmin bool) {
	if p.IsAdmin == isAdmin {
		return
	}
	p.IsAdmin = isAdmin
	p.IncrementVersion()
	p.AddDomainEvent(NewProfileUpdatedEvent(p))
}

// MeterNumberOrEmpty returns the meter number or ""
func (p *Profile) MeterNumberOrEmpty() string {
	if p.MeterNumber == nil {
		return ""
	}
	return *p.MeterNumber
}

func validateFullName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Full name cannot exceed 200 characters")
	}
	return nil
}
