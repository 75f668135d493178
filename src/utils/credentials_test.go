package utils

import (
	"encoding/hex"
	"gala/src/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCredentialHash(t *testing.T) {
	hash := ComputeCredentialHash("guest@example.com", "secret", 1700000000000)

	assert.Len(t, hash, 64)
	_, err := hex.DecodeString(hash)
	assert.Nil(t, err)

	again := ComputeCredentialHash("guest@example.com", "secret", 1700000000000)
	assert.Equal(t, hash, again)

	later := ComputeCredentialHash("guest@example.com", "secret", 1700000000001)
	assert.NotEqual(t, hash, later)

	other := ComputeCredentialHash("other@example.com", "secret", 1700000000000)
	assert.NotEqual(t, hash, other)

	rotated := ComputeCredentialHash("guest@example.com", "rotated", 1700000000000)
	assert.NotEqual(t, hash, rotated)
}

func TestCredentialMatches(t *testing.T) {
	stored := ComputeCredentialHash("guest@example.com", "secret", 1700000000000)

	assert.True(t, CredentialMatches(stored, stored))
	assert.False(t, CredentialMatches(stored, ""))
	assert.False(t, CredentialMatches(stored, stored[:63]))
	assert.False(t, CredentialMatches(stored, stored+"0"))

	wrong := ComputeCredentialHash("guest@example.com", "secret", 1700000000001)
	assert.False(t, CredentialMatches(stored, wrong))
}

func TestCredentialExpired(t *testing.T) {
	hash := ComputeCredentialHash("guest@example.com", "secret", 1700000000000)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.True(t, CredentialExpired(&models.Guest{}))
	assert.False(t, CredentialExpired(&models.Guest{CredentialHash: &hash}))
	assert.False(t, CredentialExpired(&models.Guest{CredentialHash: &hash, CredentialExpiresAt: &future}))
	assert.True(t, CredentialExpired(&models.Guest{CredentialHash: &hash, CredentialExpiresAt: &past}))
}
