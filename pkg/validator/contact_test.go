package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"jane@example.com",
		"jane.doe+tag@sub.example.co",
		"x_y%z@example.org",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"jane",
		"jane@",
		"@example.com",
		"jane@example",
		"jane doe@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"0412345678",
		"+61412345678",
		"0412 345 678",
		"04-1234-5678",
	}
	for _, phone := range valid {
		assert.NoError(t, ValidatePhone(phone), phone)
	}

	invalid := []string{
		"",
		"12345",
		"phone",
		"04123456789012345",
		"++61412345678",
	}
	for _, phone := range invalid {
		assert.Error(t, ValidatePhone(phone), phone)
	}
}
