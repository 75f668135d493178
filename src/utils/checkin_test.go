package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateCheckin(t *testing.T) {
	assert.True(t, isDuplicateCheckin(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateCheckin(errors.New(`ERROR: duplicate key value violates unique constraint "idx_checkins_first_admission" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateCheckin(errors.New("connection refused")))
	assert.False(t, isDuplicateCheckin(gorm.ErrRecordNotFound))
}
