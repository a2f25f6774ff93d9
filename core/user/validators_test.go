package user

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name      string
		data      NewUser
		wantField string
		wantTag   string
	}{
		{name: "username required", data: NewUser{Password: "s3cr3tpwd"}, wantField: "username", wantTag: "required"},
		{name: "username too short", data: NewUser{Username: "ab", Password: "s3cr3tpwd"}, wantField: "username", wantTag: "min"},
		{name: "username bad chars", data: NewUser{Username: "jane doe", Password: "s3cr3tpwd"}, wantField: "username", wantTag: "alphanum_"},
		{name: "password required", data: NewUser{Username: "jane"}, wantField: "password", wantTag: "required"},
		{name: "password too short", data: NewUser{Username: "jane", Password: "abc"}, wantField: "password", wantTag: pwdMinLenTag},
		{name: "password too long", data: NewUser{Username: "jane", Password: strings.Repeat("x9", 37)}, wantField: "password", wantTag: pwdMaxLenTag},
		{name: "password with multibyte runes over 72 bytes", data: NewUser{Username: "jane", Password: strings.Repeat("é", 37)}, wantField: "password", wantTag: pwdMaxLenTag},
		{name: "password of 72 bytes", data: NewUser{Username: "  Jane_Doe ", Password: strings.Repeat("x9", 36)}},
		{name: "password with space", data: NewUser{Username: "jane", Password: "abc defgh"}, wantField: "password", wantTag: pwdNoSpaceTag},
		{name: "password like username", data: NewUser{Username: "tutor01", Password: "Tutor01"}, wantField: "password", wantTag: pwdAttrSimTag},
		{name: "valid", data: NewUser{Username: "  Jane_Doe ", Password: "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantTag == "" {
				require.NoError(t, err)
				assert.Equal(t, "jane_doe", tt.data.Username)
				return
			}

			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			require.Len(t, vErrs, 1)
			assert.Equal(t, tt.wantField, vErrs[0].Field())
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}

func TestPasswordReset_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name    string
		data    PasswordReset
		wantTag string
	}{
		{name: "password too short", data: PasswordReset{Username: "jane", Password: "abc"}, wantTag: pwdMinLenTag},
		{name: "password too long", data: PasswordReset{Username: "jane", Password: strings.Repeat("x", 73)}, wantTag: pwdMaxLenTag},
		{name: "password like username", data: PasswordReset{Username: "Tutor01", Password: "tutor01"}, wantTag: pwdAttrSimTag},
		{name: "valid", data: PasswordReset{Username: " Jane ", Password: "correct-horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantTag == "" {
				require.NoError(t, err)
				assert.Equal(t, "jane", tt.data.Username)
				return
			}

			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "password", vErrs[0].Field())
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}

func TestPasswordSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, PasswordSimilarity("whatever", ""))
	assert.Equal(t, 1.0, PasswordSimilarity("Tutor", "tutor"))
	assert.Less(t, PasswordSimilarity("xq9!vbn#", "amina"), pwdMaxSim)
}

func TestUser_Password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("s3cr3tpwd"))
	assert.NotEqual(t, []byte("s3cr3tpwd"), usr.PasswordHash)
	assert.NoError(t, usr.CheckPassword("s3cr3tpwd"))
	assert.Error(t, usr.CheckPassword("wrong"))
}
