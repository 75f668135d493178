package main

import (
	"gala/src/db"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
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

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("guestcategory", guestCategoryValidatorFunc)
	}

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Setenv("MAINTENANCE_MODE", "false")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestApplyValidation() {
	router := setupRouter()
	publicHandlers(apiv1Group(router))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/apply", strings.NewReader(`{"name":"A Guest","email":"not-an-email"}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestValidateUnknownGuest() {
	router := setupRouter()
	registrationHandlers(apiv1Group(router))

	s.Mock.ExpectQuery(`SELECT (.+) FROM "guests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	hash := strings.Repeat("ab", 32)
	body := `{"email":"nobody@example.com","hash":"` + hash + `"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/registration/validate", strings.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.False(s.T(), gjson.Get(sjson, "valid").Bool())
	assert.Equal(s.T(), "not_found", gjson.Get(sjson, "error").String())
}

func (s *TestSuite) TestCheckinValidateBadToken() {
	router := setupRouter()
	checkinHandlers(apiv1Group(router))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/checkin/validate", strings.NewReader(`{"token":"garbage"}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.False(s.T(), gjson.Get(sjson, "valid").Bool())
	assert.Equal(s.T(), "INVALID_TICKET", gjson.Get(sjson, "error").String())
}

func (s *TestSuite) TestGuestImportRows() {
	assert.True(s.T(), isGuestCSVHeader([]string{"name", "email", "category"}))
	assert.True(s.T(), isGuestCSVHeader([]string{"id", "name", "email", "category", "status"}))
	assert.False(s.T(), isGuestCSVHeader([]string{"Ada", "ada@example.com", "vip"}))

	body := parseGuestCSVRow([]string{"7", "Ada", "ada@example.com", "vip", "registered"})
	assert.NotNil(s.T(), body)
	assert.Equal(s.T(), "Ada", body.Name)
	assert.Equal(s.T(), "ada@example.com", body.Email)
	assert.Equal(s.T(), "vip", body.Category)

	body = parseGuestCSVRow([]string{" Ada ", "ada@example.com", "vip"})
	assert.NotNil(s.T(), body)
	assert.Equal(s.T(), "Ada", body.Name)

	assert.Nil(s.T(), parseGuestCSVRow([]string{"Ada", "ada@example.com"}))
}

func (s *TestSuite) TestGenerateTicketValidation() {
	router := setupRouter()
	ticketHandlers(apiv1Group(router))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/tickets/generate", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
