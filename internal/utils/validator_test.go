// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/models"
)

func TestValidateSignup(t *testing.T) {
	req := models.SignupRequest{
		Email:    "buyer@example.com",
		Password: "secret1",
		Name:     "Kim",
		Role:     models.UserRoleBuyer,
		Phone:    "+821012345678",
	}
	assert.NoError(t, ValidateStruct(req))

	req.Role = models.UserRoleAdmin
	req.Phone = "010-1234-5678"
	err := ValidateStruct(req)
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("role"))
	assert.True(t, verrs.Has("phone"))
	assert.False(t, verrs.Has("email"))
}

func TestValidateReviewForm(t *testing.T) {
	tests := []struct {
		name    string
		form    models.ReviewForm
		wantErr bool
	}{
		{"valid", models.ReviewForm{Rating: 5, Comment: "great"}, false},
		{"zero rating", models.ReviewForm{Rating: 0, Comment: "great"}, true},
		{"rating too high", models.ReviewForm{Rating: 6, Comment: "great"}, true},
		{"blank comment", models.ReviewForm{Rating: 3, Comment: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.form)
			assert.Equal(t, tt.wantErr, err != nil)
			if tt.wantErr {
				assert.True(t, IsValidationError(err))
			}
		})
	}
}

func TestValidateProductForm(t *testing.T) {
	form := models.ProductForm{
		Title:       "Go kit",
		Description: "A toolkit for Go services",
		Price:       0,
		Category:    "libraries",
	}
	assert.NoError(t, ValidateStruct(form))

	form.Category = "games"
	form.Price = -1
	err := ValidateStruct(form)
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("category"))
	assert.True(t, verrs.Has("price"))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("text", "hello", "required,max=2000"))

	err := ValidateVar("text", "", "required,max=2000")
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "text is required", verrs.Errors[0].Message)
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+821012345678"))
	assert.True(t, IsValidPhone("+82212345678"))
	assert.False(t, IsValidPhone("+8210123"))
	assert.False(t, IsValidPhone("01012345678"))
}
