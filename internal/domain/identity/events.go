package identity

import "github.com/aquaportal/backend/internal/domain/shared"

const AggregateTypeProfile = "Profile"

const (
	EventTypeProfileRegistered = "ProfileRegistered"
	EventTypeProfileUpdated    = "ProfileUpdated"
)

// ProfileRegisteredEvent is raised when a new account gets its profile
type ProfileRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

func NewProfileRegisteredEvent(p *Profile) *ProfileRegisteredEvent {
	return &ProfileRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileRegistered, AggregateTypeProfile, p.ID, p.ID),
		UserID:          p.UserID.String(),
		FullName:        p.FullName,
	}
}

// ProfileUpdatedEvent is raised on any profile change
type ProfileUpdatedEvent struct {
	shared.BaseDomainEvent
	MeterNumber string `json:"meter_number,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

func NewProfileUpdatedEvent(p *Profile) *ProfileUpdatedEvent {
	return &ProfileUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileUpdated, AggregateTypeProfile, p.ID, p.ID),
		MeterNumber:     p.MeterNumberOrEmpty(),
		IsAdmin:         p.IsAdmin,
	}
}
