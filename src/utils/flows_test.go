package utils

import (
	"gala/src/db"
	"gala/src/types"
	"log"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type FlowTestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqldb}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *FlowTestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *FlowTestSuite) guestColumns() []string {
	return []string{"id", "name", "email", "category", "status", "credential_hash", "credential_expires_at"}
}

func (s *FlowTestSuite) TestCredentialSingleUse() {
	stored := ComputeCredentialHash("ada@example.com", "secret", 1700000000000)
	future := time.Now().Add(time.Hour)

	s.Mock.ExpectQuery(`SELECT (.+) FROM "guests"`).
		WillReturnRows(sqlmock.NewRows(s.guestColumns()).
			AddRow(1, "Ada", "ada@example.com", "vip", "invited", stored, future))

	summary, cerr, err := ValidateCredential(stored, "ada@example.com")
	assert.Nil(s.T(), err)
	assert.Empty(s.T(), cerr)
	assert.Equal(s.T(), uint(1), summary.ID)

	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`UPDATE "guests" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.ExpectCommit()

	assert.Nil(s.T(), ConsumeCredential(1))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "guests"`).
		WillReturnRows(sqlmock.NewRows(s.guestColumns()).
			AddRow(1, "Ada", "ada@example.com", "vip", "registered", nil, nil))

	summary, cerr, err = ValidateCredential(stored, "ada@example.com")
	assert.Nil(s.T(), err)
	assert.Nil(s.T(), summary)
	assert.Equal(s.T(), types.CREDENTIAL_NO_LINK, cerr)

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *FlowTestSuite) TestGenerateTicketIdempotentRead() {
	os.Setenv("TEMP_DIR", s.T().TempDir())

	existing, err := SignTicketToken(1, 1, "single", time.Now().Add(time.Hour))
	assert.Nil(s.T(), err)

	s.Mock.ExpectQuery(`SELECT (.+) FROM "registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "guest_id", "ticket_type", "ticket_token"}).
			AddRow(1, 1, "single", existing))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "guests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "category", "status"}).
			AddRow(1, "Ada", "ada@example.com", "vip", "registered"))

	result, terr, err := GenerateTicket(1, false)
	assert.Nil(s.T(), err)
	assert.Empty(s.T(), terr)
	assert.Equal(s.T(), existing, result.Token)

	// No UPDATE was expected: an existing token is returned unchanged.
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *FlowTestSuite) TestRegenerationInvalidatesOldToken() {
	exp := time.Now().Add(time.Hour)
	old, err := SignTicketToken(1, 1, "single", exp)
	assert.Nil(s.T(), err)
	current, err := SignTicketToken(1, 1, "single", exp)
	assert.Nil(s.T(), err)
	assert.NotEqual(s.T(), old, current)

	s.Mock.ExpectQuery(`SELECT (.+) FROM "registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "guest_id", "ticket_type", "ticket_token", "cancelled_at"}).
			AddRow(1, 1, "single", current, nil))

	verified, terr, err := VerifyTicket(old)
	assert.Nil(s.T(), verified)
	assert.Equal(s.T(), types.TOKEN_MISMATCH, terr)
	assert.NotNil(s.T(), err)

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *FlowTestSuite) TestCheckinSingleWinnerAndOverride() {
	staff := types.SessionIdentity{UserID: 9, Role: types.ROLE_STAFF}
	registrationRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "guest_id", "ticket_type"}).AddRow(1, 1, "single")
	}
	checkinColumns := []string{"id", "registration_id", "checked_in_at", "staff_user_id", "is_override"}

	// First submit wins and inserts the admission row.
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "registrations"`).WillReturnRows(registrationRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "checkins"`).
		WillReturnRows(sqlmock.NewRows(checkinColumns))
	s.Mock.ExpectQuery(`INSERT INTO "checkins"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	result, err := SubmitCheckin(1, staff, false)
	assert.Nil(s.T(), err)
	assert.True(s.T(), result.Success)
	assert.Equal(s.T(), uint(1), result.CheckinID)

	// Second submit without override reports the existing admission.
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "registrations"`).WillReturnRows(registrationRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "checkins"`).
		WillReturnRows(sqlmock.NewRows(checkinColumns).
			AddRow(1, 1, time.Now(), 9, false))
	s.Mock.ExpectCommit()

	result, err = SubmitCheckin(1, staff, false)
	assert.Nil(s.T(), err)
	assert.False(s.T(), result.Success)
	assert.Equal(s.T(), types.ALREADY_CHECKED_IN, result.Reason)
	assert.Equal(s.T(), uint(1), result.PreviousCheckin.ID)

	// Override admits again and writes the audit trail row.
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "registrations"`).WillReturnRows(registrationRows())
	s.Mock.ExpectQuery(`SELECT (.+) FROM "checkins"`).
		WillReturnRows(sqlmock.NewRows(checkinColumns).
			AddRow(1, 1, time.Now(), 9, false))
	s.Mock.ExpectQuery(`INSERT INTO "checkins"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	s.Mock.ExpectQuery(`INSERT INTO "trail_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("0b1f9c2e-58a4-4f6d-9c35-7d2f8e1a6b40"))
	s.Mock.ExpectCommit()

	result, err = SubmitCheckin(1, staff, true)
	assert.Nil(s.T(), err)
	assert.True(s.T(), result.Success)
	assert.Equal(s.T(), uint(2), result.CheckinID)

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func TestFlowRunner(t *testing.T) {
	suite.Run(t, new(FlowTestSuite))
}
