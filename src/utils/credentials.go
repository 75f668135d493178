package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"gala/src/config"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// credentialHashLength is the hex length of a SHA-256 digest. Presented
// hashes of any other length are rejected before comparison so the
// compare itself never runs against malformed input.
const credentialHashLength = 64

var ErrGuestNotFound = errors.New("guest not found")

// ComputeCredentialHash derives the magic-link digest from the guest's
// email, the server secret and the issuance timestamp in milliseconds.
func ComputeCredentialHash(email, secret string, issuedAtMillis int64) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s%s%d", email, secret, issuedAtMillis))
	return hex.EncodeToString(sum[:])
}

// CredentialMatches compares a presented hash against the stored one in
// constant time. A length mismatch fails fast without touching the
// stored value.
func CredentialMatches(stored, presented string) bool {
	if len(presented) != credentialHashLength {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// IssueCredential mints a fresh single-use credential for the guest with
// the given email and persists it, overwriting any prior unconsumed one.
func IssueCredential(email string) (string, *time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()
	hash := ComputeCredentialHash(email, config.CredentialSecret(), now.UnixMilli())
	expiresAt := now.Add(config.CredentialWindow())

	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.Where("LOWER(email) = ?", email).First(&guest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.Guest{}).
			Where("id = ?", guest.ID).
			Updates(map[string]any{
				"credential_hash":       hash,
				"credential_issued_at":  now,
				"credential_expires_at": expiresAt,
			}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error issuing credential for [%s]: %s\n", email, err.Error())
		return "", nil, err
	}
	return hash, &expiresAt, nil
}

// ValidateCredential checks a presented magic-link hash against the
// guest's stored credential. It does not consume the credential, so a
// multi-step registration form can re-validate across page loads; only
// ConsumeCredential burns it.
func ValidateCredential(hash, email string) (*types.GuestSummary, types.CredentialError, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var guest models.Guest
	gdb := db.GetDb()
	if err := gdb.Where("LOWER(email) = ?", email).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.CREDENTIAL_NOT_FOUND, nil
		}
		return nil, "", err
	}
	if guest.CredentialHash == nil || *guest.CredentialHash == "" {
		return nil, types.CREDENTIAL_NO_LINK, nil
	}
	if !CredentialMatches(*guest.CredentialHash, hash) {
		return nil, types.CREDENTIAL_INVALID, nil
	}
	if guest.CredentialExpiresAt != nil && guest.CredentialExpiresAt.Before(time.Now()) {
		return nil, types.CREDENTIAL_EXPIRED, nil
	}
	return guest.Summary(), "", nil
}

// ConsumeCredential clears the stored hash and expiry once the guest has
// completed registration. Clearing an already-null credential is a no-op.
func ConsumeCredential(guestId uint) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Guest{}).
			Where("id = ?", guestId).
			Updates(map[string]any{
				"credential_hash":       nil,
				"credential_issued_at":  nil,
				"credential_expires_at": nil,
			}).Error
	})
}

// CredentialExpired reports whether the guest's stored credential is
// already past its expiry. Used by the public link-request endpoint to
// decide when a resend may bypass the rate limit.
func CredentialExpired(guest *models.Guest) bool {
	if guest.CredentialHash == nil {
		return true
	}
	if guest.CredentialExpiresAt == nil {
		return false
	}
	return guest.CredentialExpiresAt.Before(time.Now())
}
