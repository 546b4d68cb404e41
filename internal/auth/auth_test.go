package auth

import (
	"testing"

	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashOf(t *testing.T, h Hasher, secret string) string {
	t.Helper()
	out, err := h.Hash(secret)
	require.NoError(t, err)
	return out
}

func TestVerifyRoomPassword(t *testing.T) {
	hasher := BcryptHasher{Cost: 4} // min cost keeps the test fast
	authority := NewAuthority(hasher)

	meeting := &domain.Meeting{PasswordHash: hashOf(t, hasher, "1234")}

	assert.NoError(t, authority.VerifyRoomPassword(meeting, "1234"))
	assert.ErrorIs(t, authority.VerifyRoomPassword(meeting, "4321"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, authority.VerifyRoomPassword(meeting, ""), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, authority.VerifyRoomPassword(nil, "1234"), domain.ErrInvalidCredentials)
}

func TestVerifyOwnerRequiresBothChecks(t *testing.T) {
	hasher := BcryptHasher{Cost: 4}
	authority := NewAuthority(hasher)

	meeting := &domain.Meeting{
		OwnerTokenHash: hashOf(t, hasher, "token-abc"),
		OwnerPrincipal: "principal-1",
	}

	tests := []struct {
		name  string
		creds domain.OwnerCredentials
		ok    bool
	}{
		{"both match", domain.OwnerCredentials{Token: "token-abc", Principal: "principal-1"}, true},
		{"wrong token", domain.OwnerCredentials{Token: "token-xyz", Principal: "principal-1"}, false},
		{"wrong principal", domain.OwnerCredentials{Token: "token-abc", Principal: "principal-2"}, false},
		{"missing token", domain.OwnerCredentials{Principal: "principal-1"}, false},
		{"missing principal", domain.OwnerCredentials{Token: "token-abc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authority.VerifyOwner(meeting, tt.creds)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			}
		})
	}
}

func TestShouldHost(t *testing.T) {
	assert.True(t, ShouldHost(true, 5))
	assert.True(t, ShouldHost(false, 0))
	assert.False(t, ShouldHost(false, 1))
}
