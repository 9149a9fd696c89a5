package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	assert.Nil(t, ValidateName("Bo Ek"))
	assert.Nil(t, ValidateName("Åsa"))

	e := ValidateName(" a ")
	require.NotNil(t, e)
	assert.Equal(t, MsgNameTooShort, e.Message)

	assert.NotNil(t, ValidateName(""))
}

func TestValidateEmail(t *testing.T) {
	assert.Nil(t, ValidateEmail("anna@example.com"))

	for _, bad := range []string{"", "anna", "anna@", "@example.com"} {
		e := ValidateEmail(bad)
		require.NotNil(t, e, "expected %q to be rejected", bad)
		assert.Equal(t, MsgInvalidEmail, e.Message)
	}
}

func TestValidatePhone(t *testing.T) {
	assert.Nil(t, ValidatePhone("+46 70 123 45 67"))
	assert.Nil(t, ValidatePhone("0701234567"))
	assert.Nil(t, ValidatePhone("(070) 123-45-67"))

	short := ValidatePhone("070123")
	require.NotNil(t, short)
	assert.Equal(t, MsgPhoneTooShort, short.Message)

	// length passes, format does not
	badFormat := ValidatePhone("070123456a")
	require.NotNil(t, badFormat)
	assert.Equal(t, MsgInvalidPhone, badFormat.Message)
}

func TestValidateForm_CollectsAllErrors(t *testing.T) {
	errs := ValidateForm("a", "nope", "1")
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "phone", errs[2].Field)

	assert.Empty(t, ValidateForm("Anna Andersson", "anna@example.com", "+46 70 123 45 67"))
}
