package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cardlink/internal/lib/validation"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Name  string `validate:"required"`
		Email string `validate:"omitempty,email"`
		Date  string `validate:"datetime=2006-01-02"`
		Note  string `validate:"max=3"`
		Slot  int    `validate:"min=5"`
		Days  []int  `validate:"dive,max=6"`
	}

	err := validation.New().Struct(request{Email: "nope", Date: "10.03.2025", Note: "long note", Slot: 1, Days: []int{1, 9}})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Date must match format 2006-01-02")
	assert.Contains(t, resp.Error, "field Note must be at most 3 characters")
	assert.Contains(t, resp.Error, "field Slot must be at least 5")
	assert.Contains(t, resp.Error, "field Days[1] must be at most 6")
	assert.NotContains(t, resp.Error, "6 characters")
}
