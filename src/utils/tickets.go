package utils

import (
	"errors"
	"fmt"
	"gala/src/config"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"os"
	"path"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// TicketResult carries the signed token plus the rendered QR image for
// display or email embedding.
type TicketResult struct {
	Token     string `json:"token"`
	ImagePath string `json:"image_path"`
}

// VerifiedTicket is what the check-in surface gets back for a token that
// passed signature, expiry and currency checks.
type VerifiedTicket struct {
	Registration *models.Registration `json:"registration"`
	Guest        *types.GuestSummary  `json:"guest"`
	TicketType   string               `json:"ticket_type"`
}

// SignTicketToken mints the token binding a registration, its guest and
// the ticket type. Expiry is absolute: every ticket dies at event close.
func SignTicketToken(registrationId, guestId uint, ticketType string, expiresAt time.Time) (string, error) {
	claims := types.TicketClaims{
		RegistrationID: registrationId,
		GuestID:        guestId,
		TicketType:     ticketType,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per signing so a regenerated ticket never collides
			// with the token it replaces.
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(registrationId),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(config.TicketSecret())
}

// ParseTicketToken verifies signature and expiry and returns the claims.
func ParseTicketToken(tokenString string) (*types.TicketClaims, types.TicketError, error) {
	claims := &types.TicketClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return config.TicketSecret(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, types.TICKET_EXPIRED, err
		}
		return nil, types.INVALID_TICKET, err
	}
	if !token.Valid {
		return nil, types.INVALID_TICKET, errors.New("token is not valid")
	}
	return claims, "", nil
}

// GenerateTicket issues (or re-reads) the signed ticket for a
// registration. Payment must have cleared unless the guest is VIP; the
// gate lives here rather than trusting the caller. With regenerate false
// an existing token is returned unchanged; with regenerate true the old
// token is overwritten and dies at the next mismatch check.
func GenerateTicket(registrationId uint, regenerate bool) (*TicketResult, types.TicketError, error) {
	var registration models.Registration
	var guest models.Guest
	gdb := db.GetDb()
	if err := gdb.Where(&models.Registration{ID: registrationId}).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.REGISTRATION_NOT_FOUND, err
		}
		return nil, "", err
	}
	if err := gdb.Where(&models.Guest{ID: registration.GuestID}).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.GUEST_NOT_FOUND, err
		}
		return nil, "", err
	}
	if guest.Category != string(types.GUEST_VIP) {
		var paid int64
		if err := gdb.
			Model(&models.Payment{}).
			Where(&models.Payment{RegistrationID: registration.ID, Status: string(types.PAYMENT_PAID)}).
			Count(&paid).Error; err != nil {
			return nil, "", err
		}
		if paid == 0 {
			err := errors.New("ticket generation requires a cleared payment")
			return nil, types.PAYMENT_REQUIRED, err
		}
	}

	if registration.TicketToken != nil && *registration.TicketToken != "" && !regenerate {
		imagePath, err := renderTicketImage(registration.ID, *registration.TicketToken)
		if err != nil {
			return nil, "", err
		}
		return &TicketResult{Token: *registration.TicketToken, ImagePath: imagePath}, "", nil
	}

	token, err := SignTicketToken(registration.ID, guest.ID, registration.TicketType, config.EventEndTime())
	if err != nil {
		log.Printf("Error signing ticket for Registration [%d]: %s\n", registration.ID, err.Error())
		return nil, "", err
	}
	if err := gdb.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Registration{}).
			Where("id = ?", registration.ID).
			Update("ticket_token", token).Error
	}); err != nil {
		return nil, "", err
	}
	imagePath, err := renderTicketImage(registration.ID, token)
	if err != nil {
		return nil, "", err
	}
	return &TicketResult{Token: token, ImagePath: imagePath}, "", nil
}

// VerifyTicket answers whether a presented token is authentic and
// current. The stored-token equality check catches replays of a ticket
// that was since regenerated.
func VerifyTicket(tokenString string) (*VerifiedTicket, types.TicketError, error) {
	claims, terr, err := ParseTicketToken(tokenString)
	if terr != "" {
		return nil, terr, err
	}
	var registration models.Registration
	gdb := db.GetDb()
	if err := gdb.Where(&models.Registration{ID: claims.RegistrationID}).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.REGISTRATION_NOT_FOUND, err
		}
		return nil, "", err
	}
	if registration.CancelledAt != nil {
		err := errors.New("registration has been cancelled")
		return nil, types.REGISTRATION_CANCELLED, err
	}
	if registration.TicketToken == nil || *registration.TicketToken != tokenString {
		err := errors.New("presented token does not match the issued ticket")
		return nil, types.TOKEN_MISMATCH, err
	}
	var guest models.Guest
	if err := gdb.Where(&models.Guest{ID: registration.GuestID}).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.GUEST_NOT_FOUND, err
		}
		return nil, "", err
	}
	return &VerifiedTicket{
		Registration: &registration,
		Guest:        guest.Summary(),
		TicketType:   registration.TicketType,
	}, "", nil
}

func renderTicketImage(registrationId uint, token string) (string, error) {
	tempdir := os.Getenv("TEMP_DIR")
	filename := fmt.Sprintf("galaticket_%d.jpeg", registrationId)
	filepath := path.Join(tempdir, filename)
	qrc, err := qrcode.New(token)
	if err != nil {
		return "", err
	}
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
