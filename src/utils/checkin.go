package utils

import (
	"errors"
	"fmt"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CheckinValidation is the scanner-facing answer to "is this ticket
// admissible, and has it been used?". A prior check-in never makes the
// validation fail; the staff UI warns and asks for an explicit override.
type CheckinValidation struct {
	Valid            bool                  `json:"valid"`
	Error            types.TicketError     `json:"error,omitempty"`
	Guest            *types.GuestSummary   `json:"guest,omitempty"`
	Registration     *models.Registration  `json:"registration,omitempty"`
	AlreadyCheckedIn bool                  `json:"already_checked_in"`
	PreviousCheckin  *types.CheckinSummary `json:"previous_checkin,omitempty"`
}

// CheckinResult is the outcome of a submit. ALREADY_CHECKED_IN is an
// expected, frequent result at the door, not an error.
type CheckinResult struct {
	Success         bool                  `json:"success"`
	Reason          string                `json:"reason,omitempty"`
	CheckinID       uint                  `json:"checkin_id,omitempty"`
	PreviousCheckin *types.CheckinSummary `json:"previous_checkin,omitempty"`
}

// ValidateCheckin verifies the presented token and reports any existing
// admission without mutating state.
func ValidateCheckin(token string) (*CheckinValidation, error) {
	verified, terr, err := VerifyTicket(token)
	if terr != "" {
		log.Printf("Ticket validation failed: code=%s error=%v\n", terr, err)
		return &CheckinValidation{Valid: false, Error: terr}, nil
	}
	if err != nil {
		return nil, err
	}
	var prior models.Checkin
	gdb := db.GetDb()
	err = gdb.
		Where(&models.Checkin{RegistrationID: verified.Registration.ID}).
		Order("checked_in_at asc").
		First(&prior).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	validation := &CheckinValidation{
		Valid:        true,
		Guest:        verified.Guest,
		Registration: verified.Registration,
	}
	if prior.ID > 0 {
		validation.AlreadyCheckedIn = true
		validation.PreviousCheckin = prior.Summary()
	}
	return validation, nil
}

// SubmitCheckin commits the admission decision. Exactly one non-override
// check-in can win per registration; the partial unique index on
// checkins is the authority, so a concurrent duplicate surfaces as a
// conflict result rather than a 500.
func SubmitCheckin(registrationId uint, staff types.SessionIdentity, override bool) (*CheckinResult, error) {
	gdb := db.GetDb()
	var result *CheckinResult
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var registration models.Registration
		if err := tx.Where(&models.Registration{ID: registrationId}).First(&registration).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s", types.REGISTRATION_NOT_FOUND)
			}
			return err
		}
		var prior models.Checkin
		err := tx.
			Where(&models.Checkin{RegistrationID: registrationId}).
			Order("checked_in_at asc").
			First(&prior).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hasPrior := prior.ID > 0
		if hasPrior && !override {
			result = &CheckinResult{
				Success:         false,
				Reason:          types.ALREADY_CHECKED_IN,
				PreviousCheckin: prior.Summary(),
			}
			return nil
		}
		checkin := models.Checkin{
			RegistrationID: registrationId,
			CheckedInAt:    time.Now(),
			StaffUserID:    staff.UserID,
			IsOverride:     hasPrior,
		}
		if err := tx.Create(&checkin).Error; err != nil {
			return err
		}
		if checkin.IsOverride {
			trail := models.TrailLog{
				Type:      "checkin_override",
				Initiator: fmt.Sprint(staff.UserID),
				Group:     fmt.Sprintf("registration:%d", registrationId),
			}
			if err := tx.Create(&trail).Error; err != nil {
				return err
			}
		}
		result = &CheckinResult{Success: true, CheckinID: checkin.ID}
		return nil
	})
	if err != nil {
		if isDuplicateCheckin(err) {
			// Lost the race: another submit created the row first.
			var prior models.Checkin
			if ferr := gdb.
				Where(&models.Checkin{RegistrationID: registrationId}).
				Order("checked_in_at asc").
				First(&prior).Error; ferr != nil {
				log.Printf("Error loading winning checkin for Registration [%d]: %s\n", registrationId, ferr.Error())
				return &CheckinResult{Success: false, Reason: types.ALREADY_CHECKED_IN}, nil
			}
			return &CheckinResult{
				Success:         false,
				Reason:          types.ALREADY_CHECKED_IN,
				PreviousCheckin: prior.Summary(),
			}, nil
		}
		return nil, err
	}
	return result, nil
}

func isDuplicateCheckin(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
