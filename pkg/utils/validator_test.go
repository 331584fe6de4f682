package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("employee@test.tld"))
	assert.NoError(t, ValidateEmail("john.doe+bills@corp.io"))
	assert.Error(t, ValidateEmail("a@a"))
	assert.Error(t, ValidateEmail("not an email"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidateUserType(t *testing.T) {
	assert.NoError(t, ValidateUserType("Admin", "Employee", "Admin"))
	assert.Error(t, ValidateUserType("admin", "Employee", "Admin"))
	assert.Error(t, ValidateUserType("", "Employee", "Admin"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "séminaire\nà Lyon", SanitizeString("sémi\x00naire\nà Lyon\x7f"))
}
