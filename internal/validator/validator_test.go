package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type studioForm struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Username    string   `json:"username" validate:"omitempty,studio-username"`
	StudioTypes []string `json:"studio_types" validate:"omitempty,dive,is-studio-type"`
	Role        string   `json:"role" validate:"omitempty,is-user-role"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&studioForm{Username: "A!", StudioTypes: []string{"HOME", "CASTLE"}, Role: "GOD"})
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Errors, "name")
	assert.Contains(t, verr.Errors, "username")
	assert.Contains(t, verr.Errors, "studio_types[1]")
	assert.Contains(t, verr.Errors, "role")
	assert.NotContains(t, verr.Errors, "studio_types[0]")
}

func TestValidatePasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&studioForm{
		Name:        "Booth One",
		Username:    "booth-one",
		StudioTypes: []string{"HOME", "VOICEOVER"},
		Role:        "STUDIO_OWNER",
	}))
}

func TestCheckUsernameSyntax(t *testing.T) {
	cases := map[string]bool{
		"abc":                            true,
		"Studio_42":                      true, // lowercased before matching
		"  padded  ":                     true,
		"ab":                             false,
		"-leading":                       false,
		"has space":                      false,
		"dots.not.allowed":               false,
		"a234567890123456789012345678901": false,
		"admin":                          false,
		"Support":                        false,
	}
	for name, ok := range cases {
		reason := CheckUsernameSyntax(name)
		if ok {
			assert.Empty(t, reason, name)
		} else {
			assert.NotEmpty(t, reason, name)
		}
	}
}
