package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"studiofinder_backend/internal/services/dto"
)

func TestRenderEnforcementReport(t *testing.T) {
	report := &dto.EnforcementReport{
		RanAt:              "2026-03-01T04:00:00Z",
		DryRun:             true,
		ExpiredMemberships: 1,
		RemindersSent:      1,
		Changes: []dto.EnforcementChange{
			{StudioID: "s-1", Username: "abbeyroad", Action: "expire_membership", Deadline: "2026-02-28T00:00:00Z"},
			{StudioID: "s-2", Username: "leedsbooth", Action: "renewal_reminder"},
		},
	}

	out := renderEnforcementReport(report)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "abbeyroad")
	assert.Contains(t, out, "expire_membership")
	assert.Contains(t, out, "leedsbooth")
	assert.Contains(t, out, "reminders: 1")
}

func TestRenderEmptyReport(t *testing.T) {
	out := renderEnforcementReport(&dto.EnforcementReport{RanAt: "now"})
	assert.True(t, strings.HasSuffix(out, "Nothing to change.\n"))
	assert.Contains(t, out, "applied")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed-admin", "enforce"} {
		assert.True(t, names[want], want)
	}

	enforce, _, err := root.Find([]string{"enforce"})
	assert.NoError(t, err)
	assert.NotNil(t, enforce.Flags().Lookup("dry-run"))
}
