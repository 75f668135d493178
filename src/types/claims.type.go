package types

import (
	jwtv4 "github.com/golang-jwt/jwt/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims carries a staff session. Subject is the staff user id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwtv4.RegisteredClaims
}

// TicketClaims is the signed payload of a QR ticket token. It binds the
// token to a live registration row; the signature proves authenticity,
// the stored-token mismatch check proves currency.
type TicketClaims struct {
	RegistrationID uint   `json:"registration_id"`
	GuestID        uint   `json:"guest_id"`
	TicketType     string `json:"ticket_type"`
	jwtv5.RegisteredClaims
}
