package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/markaz/core"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=64,alphanum_"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	return validate.Struct(nu)
}

// Credentials is what a User logs in with.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return validate.Struct(c)
}

// PasswordReset sets a new password on an existing User, under the sign up password policy.
type PasswordReset struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate) error {
	pr.Username = core.CleanString(pr.Username, true /* lower */)
	return validate.Struct(pr)
}
