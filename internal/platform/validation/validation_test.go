package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Name  string `json:"name" validate:"required" msg:"Name is required"`
	Email string `json:"email" validate:"email"`
}

type outer struct {
	Code   string `json:"code" validate:"required,len=6"`
	Nested inner  `json:"nested"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	errs := v.Struct(outer{Code: "123456", Nested: inner{Name: "a", Email: "a@b.co"}})
	assert.Nil(t, errs)
}

func TestStruct_FieldNamesAndMessages(t *testing.T) {
	v := New()
	errs := v.Struct(&outer{Code: "12", Nested: inner{Email: "nope"}})
	require.Len(t, errs, 3)

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "code must be exactly 6 characters", byField["code"])
	assert.Equal(t, "Name is required", byField["nested.name"])
	assert.Equal(t, "Please include a valid email", byField["nested.email"])
}

type secret struct {
	Password string `json:"password" validate:"min=6,maxbytes=8" msg:"Too short" msg_maxbytes:"Too long"`
	Note     string `json:"note" validate:"maxbytes=3"`
}

func TestStruct_MaxBytesCountsBytesNotRunes(t *testing.T) {
	v := New()

	assert.Nil(t, v.Struct(secret{Password: "12345678", Note: "abc"}))

	// 6 runes, 8 bytes
	assert.Nil(t, v.Struct(secret{Password: "éé1234"}))

	// 6 runes, 12 bytes
	errs := v.Struct(secret{Password: "éééééé", Note: "éé"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Too long", errs[0].Message)
	assert.Equal(t, "note must be at most 3 bytes", errs[1].Message)

	errs = v.Struct(secret{Password: "123"})
	require.Len(t, errs, 1)
	assert.Equal(t, "Too short", errs[0].Message)
}
