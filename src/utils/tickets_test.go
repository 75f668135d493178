package utils

import (
	"gala/src/types"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	os.Setenv("TICKET_SECRET", "test-ticket-secret")
	os.Exit(m.Run())
}

func TestTicketTokenRoundTrip(t *testing.T) {
	token, err := SignTicketToken(42, 7, "single", time.Now().Add(time.Hour))
	assert.Nil(t, err)
	assert.NotEmpty(t, token)

	claims, terr, err := ParseTicketToken(token)
	assert.Nil(t, err)
	assert.Empty(t, terr)
	assert.Equal(t, uint(42), claims.RegistrationID)
	assert.Equal(t, uint(7), claims.GuestID)
	assert.Equal(t, "single", claims.TicketType)
}

func TestRegeneratedTokensDiffer(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	first, err := SignTicketToken(42, 7, "single", exp)
	assert.Nil(t, err)
	second, err := SignTicketToken(42, 7, "single", exp)
	assert.Nil(t, err)
	assert.NotEqual(t, first, second)
}

func TestExpiredTicketToken(t *testing.T) {
	token, err := SignTicketToken(42, 7, "single", time.Now().Add(-time.Minute))
	assert.Nil(t, err)

	claims, terr, err := ParseTicketToken(token)
	assert.Nil(t, claims)
	assert.Equal(t, types.TICKET_EXPIRED, terr)
	assert.NotNil(t, err)
}

func TestTamperedTicketToken(t *testing.T) {
	token, err := SignTicketToken(42, 7, "single", time.Now().Add(time.Hour))
	assert.Nil(t, err)

	tampered := token[:len(token)-2] + "xx"
	claims, terr, _ := ParseTicketToken(tampered)
	assert.Nil(t, claims)
	assert.Equal(t, types.INVALID_TICKET, terr)

	claims, terr, _ = ParseTicketToken("not-a-token")
	assert.Nil(t, claims)
	assert.Equal(t, types.INVALID_TICKET, terr)
}

func TestSignatureKeyMismatch(t *testing.T) {
	token, err := SignTicketToken(42, 7, "single", time.Now().Add(time.Hour))
	assert.Nil(t, err)

	os.Setenv("TICKET_SECRET", "rotated-ticket-secret")
	defer os.Setenv("TICKET_SECRET", "test-ticket-secret")

	claims, terr, _ := ParseTicketToken(token)
	assert.Nil(t, claims)
	assert.Equal(t, types.INVALID_TICKET, terr)
}
