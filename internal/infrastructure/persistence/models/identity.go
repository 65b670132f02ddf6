package models

import (
	"time"

	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for login accounts
type AccountModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Active       bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Active:       a.Active,
		LastLoginAt:  a.LastLoginAt,
	}
	m.AggregateModel.FromDomain(a.BaseAggregateRoot)
	return m
}

// ProfileModel is the persistence model for customer and admin profiles.
// user_id cascades on account deletion; meter_number is unique when set.
type ProfileModel struct {
	AggregateModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FullName    string    `gorm:"type:varchar(200);not null"`
	Phone       string    `gorm:"type:varchar(50)"`
	Address     string    `gorm:"type:varchar(500)"`
	MeterNumber *string   `gorm:"type:varchar(50);uniqueIndex"`
	IsAdmin     bool      `gorm:"not null;default:false;index"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		UserID:            m.UserID,
		FullName:          m.FullName,
		Phone:             m.Phone,
		Address:           m.Address,
		MeterNumber:       m.MeterNumber,
		IsAdmin:           m.IsAdmin,
	}
}

func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	m := &ProfileModel{
		UserID:      p.UserID,
		FullName:    p.FullName,
		Phone:       p.Phone,
		Address:     p.Address,
		MeterNumber: p.MeterNumber,
		IsAdmin:     p.IsAdmin,
	}
	m.AggregateModel.FromDomain(p.BaseAggregateRoot)
	return m
}
