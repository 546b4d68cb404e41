// Package auth verifies room passwords and owner credentials and decides
// who becomes host.
package auth

import (
	"fmt"

	"github.com/qb9r2873g/voice-room/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way hash/verify primitive for secrets at rest.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

type Authority struct {
	hasher Hasher
}

func NewAuthority(hasher Hasher) *Authority {
	return &Authority{hasher: hasher}
}

// VerifyRoomPassword checks the supplied password against the meeting's
// verifier. The error never reveals which part of the check failed.
func (a *Authority) VerifyRoomPassword(meeting *domain.Meeting, password string) error {
	if meeting == nil || password == "" || !a.hasher.Verify(password, meeting.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// VerifyOwner requires both the token hash comparison and an exact
// principal match; a partial match is a failure.
func (a *Authority) VerifyOwner(meeting *domain.Meeting, creds domain.OwnerCredentials) error {
	if meeting == nil || creds.Token == "" || creds.Principal == "" {
		return domain.ErrInvalidCredentials
	}
	tokenOK := a.hasher.Verify(creds.Token, meeting.OwnerTokenHash)
	principalOK := creds.Principal == meeting.OwnerPrincipal
	if !tokenOK || !principalOK {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// ShouldHost applies the host election rule: the verified owner always
// hosts, otherwise the first participant into an empty room does.
func ShouldHost(ownerVerified bool, connectedCount int) bool {
	return ownerVerified || connectedCount == 0
}
