package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshal(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1990-05-21"`), &d))
	assert.Equal(t, 1990, d.Year())
	assert.Equal(t, time.May, d.Month())
	assert.Equal(t, 21, d.Day())
}

func TestDateUnmarshalNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
}

func TestDateUnmarshalInvalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"21/05/1990"`), &d))
}

func TestDateMarshal(t *testing.T) {
	d := Date{Time: time.Date(1990, time.May, 21, 0, 0, 0, 0, time.UTC)}
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1990-05-21"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestUserJSONRoundTrip(t *testing.T) {
	in := []byte(`{
		"name": "Maria Silva",
		"email": "maria@example.com",
		"phoneNumber": "+5511999999999",
		"openNetwork": true,
		"cep": "01310-100",
		"birthday": "1990-05-21",
		"biography": "backend engineer"
	}`)

	var u User
	require.NoError(t, json.Unmarshal(in, &u))
	assert.Equal(t, "Maria Silva", u.Name)
	assert.True(t, u.OpenNetwork)
	assert.Equal(t, 1990, u.Birthday.Year())

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthday":"1990-05-21"`)
	assert.NotContains(t, string(out), "urlPicture")
}

func validUser() *User {
	return &User{
		Name:        "Maria Silva",
		Email:       "maria@example.com",
		PhoneNumber: "+5511999999999",
		CEP:         "01310-100",
		Birthday:    Date{Time: time.Date(1990, time.May, 21, 0, 0, 0, 0, time.UTC)},
	}
}

func newValidationService() *Service {
	return &Service{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func TestValidateUser(t *testing.T) {
	svc := newValidationService()
	assert.NoError(t, svc.validateUser(validUser()))
}

func TestValidateUserMissingName(t *testing.T) {
	svc := newValidationService()
	u := validUser()
	u.Name = ""
	assert.ErrorIs(t, svc.validateUser(u), ErrInvalid)
}

func TestValidateUserBadEmail(t *testing.T) {
	svc := newValidationService()
	u := validUser()
	u.Email = "not-an-email"
	assert.ErrorIs(t, svc.validateUser(u), ErrInvalid)
}

func TestValidateUserMissingBirthday(t *testing.T) {
	svc := newValidationService()
	u := validUser()
	u.Birthday = Date{}
	err := svc.validateUser(u)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "birthday is required")
}

func TestValidateUserFutureBirthday(t *testing.T) {
	svc := newValidationService()
	u := validUser()
	u.Birthday = Date{Time: time.Now().AddDate(1, 0, 0)}
	err := svc.validateUser(u)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "birthday must be in the past")
}
