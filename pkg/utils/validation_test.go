package utils

import (
	"strings"
	"testing"

	apperrors "crud-microservices/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" validate:"required,min=2,max=5"`
	Email string   `json:"email" validate:"omitempty,email"`
	Phone string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Price float64  `json:"price" validate:"gt=0"`
	Age   *int     `json:"age" validate:"omitempty,min=0,max=150"`
	Tags  []string `json:"tags" validate:"max=2"`
	Kind  string   `json:"kind" validate:"omitempty,oneof=a b"`
}

func valid() sample {
	return sample{Name: "Lamp", Price: 1}
}

func TestValidateStruct_Messages(t *testing.T) {
	age := 200
	tests := []struct {
		name   string
		mutate func(*sample)
		want   string
	}{
		{"required", func(s *sample) { s.Name = "" }, "name is required"},
		{"string min", func(s *sample) { s.Name = "x" }, "name must be at least 2 characters"},
		{"string max", func(s *sample) { s.Name = "toolong" }, "name must be at most 5 characters"},
		{"email", func(s *sample) { s.Email = "nope" }, "email must be a valid email"},
		{"phone", func(s *sample) { s.Phone = "12-34" }, "phone must be a valid phone number"},
		{"gt", func(s *sample) { s.Price = 0 }, "price must be greater than 0"},
		{"number max", func(s *sample) { s.Age = &age }, "age must be at most 150"},
		{"slice max", func(s *sample) { s.Tags = []string{"a", "b", "c"} }, "tags must contain at most 2 items"},
		{"oneof", func(s *sample) { s.Kind = "c" }, "kind must be one of: a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.want, apperrors.GetAppError(err).Message)
		})
	}

	s := valid()
	s.Phone = "+14155550100"
	assert.NoError(t, ValidateStruct(&s))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "request body is required"},
		{"unknown field", `{"name":"Lamp","color":"red"}`, `invalid JSON body: json: unknown field "color"`},
		{"trailing data", `{"name":"Lamp"} {}`, "invalid JSON body: unexpected trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s sample
			err := DecodeJSON(strings.NewReader(tt.body), &s)
			assert.Equal(t, tt.want, apperrors.GetAppError(err).Message)
		})
	}

	var s sample
	err := DecodeJSON(strings.NewReader(`{"name":`), &s)
	assert.True(t, apperrors.IsValidation(err))

	assert.True(t, apperrors.IsValidation(DecodeJSON(nil, &s)))
}

func TestDecodeAndValidate(t *testing.T) {
	var s sample
	require.NoError(t, DecodeAndValidate(strings.NewReader(`{"name":"Lamp","price":2.5}`), &s))
	assert.Equal(t, 2.5, s.Price)

	err := DecodeAndValidate(strings.NewReader(`{"name":"Lamp","price":-1}`), &s)
	assert.Equal(t, "price must be greater than 0", apperrors.GetAppError(err).Message)
}
