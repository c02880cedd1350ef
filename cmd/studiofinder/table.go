package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"studiofinder_backend/internal/services/dto"
)

func renderEnforcementReport(report *dto.EnforcementReport) string {
	var b strings.Builder

	mode := "applied"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "Enforcement %s at %s\n", mode, report.RanAt)

	if len(report.Changes) == 0 {
		b.WriteString("Nothing to change.\n")
		return b.String()
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Studio", "Username", "Action", "Deadline"})
	for _, c := range report.Changes {
		deadline := c.Deadline
		if deadline == "" {
			deadline = "-"
		}
		tw.AppendRow(table.Row{c.StudioID, c.Username, c.Action, deadline})
	}
	tw.AppendFooter(table.Row{"", "", "Total", len(report.Changes)})
	b.WriteString(tw.Render())
	b.WriteString("\n")

	fmt.Fprintf(&b, "expired memberships: %d, expired featured: %d, reminders: %d\n",
		report.ExpiredMemberships, report.ExpiredFeatured, report.RemindersSent)
	return b.String()
}
