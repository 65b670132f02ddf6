package identity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("creates customer profile without meter", func(t *testing.T) {
		p, err := NewProfile(userID, "  Jane Wanjiku ")
		require.NoError(t, err)
		assert.Equal(t, userID, p.UserID)
		assert.Equal(t, "Jane Wanjiku", p.FullName)
		assert.False(t, p.IsAdmin)
		assert.Nil(t, p.MeterNumber)
		assert.Equal(t, RoleCustomer, p.Role())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*ProfileRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("requires account", func(t *testing.T) {
		_, err := NewProfile(uuid.Nil, "Jane")
		assert.Error(t, err)
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := NewProfile(userID, "   ")
		assert.Error(t, err)
	})
}

func TestProfile_UpdateContact(t *testing.T) {
	p, err := NewProfile(uuid.New(), "Jane")
	require.NoError(t, err)
	p.ClearDomainEvents()

	err = p.UpdateContact(ContactDetails{Phone: strPtr(" +254700000000 "), Address: strPtr("Kisumu")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.FullName)
	assert.Equal(t, "+254700000000", p.Phone)
	assert.Equal(t, "Kisumu", p.Address)
	assert.Len(t, p.GetDomainEvents(), 1)

	err = p.UpdateContact(ContactDetails{Phone: strPtr(strings.Repeat("9", 51))})
	assert.Error(t, err)
}

func TestNewProfileWithContact(t *testing.T) {
	p, err := NewProfileWithContact(uuid.New(), "Jane", " 0700 ", "")
	require.NoError(t, err)
	assert.Equal(t, "0700", p.Phone)
	assert.Empty(t, p.Address)
	assert.Equal(t, 1, p.Version)
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProfileRegistered, p.GetDomainEvents()[0].EventType())

	_, err = NewProfileWithContact(uuid.New(), "Jane", "", strings.Repeat("a", 501))
	assert.Error(t, err)
}

func TestProfile_AssignMeterAndAdmin(t *testing.T) {
	p, err := NewProfile(uuid.New(), "Jane")
	require.NoError(t, err)

	require.NoError(t, p.AssignMeter("MTR-001"))
	assert.Equal(t, "MTR-001", p.MeterNumberOrEmpty())

	require.NoError(t, p.AssignMeter(""))
	assert.Nil(t, p.MeterNumber)

	p.SetAdmin(true)
	assert.Equal(t, RoleAdmin, p.Role())
}

func TestPrincipal(t *testing.T) {
	assert.True(t, Principal{}.IsAnonymous())
	admin := Principal{ProfileID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsAnonymous())
	assert.False(t, Role("root").IsValid())
}
