package services_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/testutil"
	"studiofinder_backend/pkg/apperrors"
)

func TestSetStudioFeaturedRespectsCap(t *testing.T) {
	env := newTestEnv(t)
	until := time.Now().UTC().Add(72 * time.Hour)
	var featuredIDs []string
	for i := 0; i < models.MaxFeaturedStudios; i++ {
		_, s := testutil.CreateStudio(t, env.db, fmt.Sprintf("capped%d", i), testutil.Featured(until))
		featuredIDs = append(featuredIDs, s.ID)
	}
	_, extra := testutil.CreateStudio(t, env.db, "waiting")

	_, err := env.svc.AdminService.SetStudioFeatured(env.db, extra.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrFeaturedLimit)

	// Re-featuring an already featured studio does not count against itself.
	again, err := env.svc.AdminService.SetStudioFeatured(env.db, featuredIDs[0], true)
	require.NoError(t, err)
	assert.WithinDuration(t, until, *again.FeaturedUntil, time.Second)

	_, err = env.svc.AdminService.SetStudioFeatured(env.db, featuredIDs[1], false)
	require.NoError(t, err)

	featured, err := env.svc.AdminService.SetStudioFeatured(env.db, extra.ID, true)
	require.NoError(t, err)
	assert.True(t, featured.IsFeatured)
	require.NotNil(t, featured.FeaturedUntil)
	assert.True(t, featured.FeaturedUntil.After(time.Now().Add(29*24*time.Hour)))

	_, err = env.svc.AdminService.SetStudioFeatured(env.db, "missing", true)
	assert.ErrorIs(t, err, apperrors.ErrStudioNotFound)
}

func TestSetStudioStatusUnfeaturesInactive(t *testing.T) {
	env := newTestEnv(t)
	_, studio := testutil.CreateStudio(t, env.db, "suspendme", testutil.Featured(time.Now().UTC().Add(time.Hour)))

	updated, err := env.svc.AdminService.SetStudioStatus(env.db, studio.ID, models.StudioStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.StudioStatusInactive, updated.Status)
	assert.False(t, updated.IsFeatured)

	updated, err = env.svc.AdminService.SetStudioVerified(env.db, studio.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	updated, err = env.svc.AdminService.SetStudioVisibility(env.db, studio.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsVisible)
}

func TestListStudiosFilters(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateStudio(t, env.db, "alpha")
	testutil.CreateStudio(t, env.db, "bravo", testutil.WithStatus(models.StudioStatusInactive, false))

	resp, err := env.svc.AdminService.ListStudios(env.db, &dto.AdminStudioQuery{Status: string(models.StudioStatusInactive)})
	require.NoError(t, err)
	list := resp.Data.([]models.StudioProfile)
	require.Len(t, list, 1)
	assert.Equal(t, "bravo", list[0].Username)

	resp, err = env.svc.AdminService.ListStudios(env.db, &dto.AdminStudioQuery{Query: "ALP"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
}

func TestAdminCannotModifySelf(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.UserRoleAdmin, models.UserStatusActive)
	ctx := context.Background()

	_, err := env.svc.AdminService.SetUserRole(env.db, admin.ID, admin.ID, models.UserRoleUser)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	_, err = env.svc.AdminService.SetUserStatus(env.db, admin.ID, admin.ID, models.UserStatusSuspended)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	assert.ErrorIs(t, env.svc.AdminService.DeleteUser(ctx, env.db, admin.ID, admin.ID), apperrors.ErrCannotModifySelf)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.UserRoleAdmin, models.UserStatusActive)
	owner, studio := testutil.CreateStudio(t, env.db, "doomed")
	ctx := context.Background()

	user, err := env.svc.AdminService.SetUserStatus(env.db, admin.ID, owner.ID, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, user.Status)

	user, err = env.svc.AdminService.SetUserRole(env.db, admin.ID, owner.ID, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, user.Role)

	resp, err := env.svc.AdminService.ListUsers(env.db, &dto.AdminUserQuery{Query: "doomed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	require.NoError(t, env.db.Create(&models.StudioImage{StudioID: studio.ID, URL: "u", PublicID: "studios/doomed/1"}).Error)
	env.storage.Objects["studios/doomed/1"] = []byte("x")
	require.NoError(t, env.db.Create(&models.Payment{
		UserID: owner.ID, Provider: models.PaymentProviderStripe, ProviderSessionID: "cs_keep",
		Purpose: models.PaymentPurposeMembership, Status: models.PaymentStatusSucceeded, Amount: 100, Currency: "gbp",
	}).Error)

	require.NoError(t, env.svc.AdminService.DeleteUser(ctx, env.db, admin.ID, owner.ID))
	_, err = env.svc.AdminService.GetUser(env.db, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	_, err = env.svc.AdminService.GetStudio(env.db, studio.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudioNotFound)
	assert.Equal(t, []string{"studios/doomed/1"}, env.storage.Deleted)

	var payments int64
	require.NoError(t, env.db.Model(&models.Payment{}).Where("user_id = ?", owner.ID).Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
}

func TestAdminDeleteStudio(t *testing.T) {
	env := newTestEnv(t)
	owner, studio := testutil.CreateStudio(t, env.db, "removed")
	require.NoError(t, env.db.Create(&models.StudioImage{StudioID: studio.ID, URL: "u", PublicID: "studios/removed/1"}).Error)

	require.NoError(t, env.svc.AdminService.DeleteStudio(context.Background(), env.db, studio.ID))
	assert.Equal(t, []string{"studios/removed/1"}, env.storage.Deleted)

	_, err := env.svc.AdminService.GetUser(env.db, owner.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, env.svc.AdminService.DeleteStudio(context.Background(), env.db, studio.ID), apperrors.ErrStudioNotFound)
}

func TestAdminNotes(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "admin@example.com", models.UserRoleAdmin, models.UserStatusActive)
	user := testutil.CreateUser(t, env.db, "noted@example.com", models.UserRoleStudioOwner, models.UserStatusActive)

	note, err := env.svc.AdminService.CreateNote(env.db, admin.ID, user.ID, "  Called about billing ")
	require.NoError(t, err)
	assert.Equal(t, "Called about billing", note.Content)
	assert.Equal(t, admin.ID, note.AuthorID)

	_, err = env.svc.AdminService.CreateNote(env.db, admin.ID, "ghost", "hello")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	notes, err := env.svc.AdminService.ListNotes(env.db, user.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	assert.ErrorIs(t, env.svc.AdminService.DeleteNote(env.db, admin.ID, note.ID), apperrors.ErrNoteNotFound)
	require.NoError(t, env.svc.AdminService.DeleteNote(env.db, user.ID, note.ID))
	notes, err = env.svc.AdminService.ListNotes(env.db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestExportWaitlistCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.WaitlistService.Join(ctx, env.db, &dto.JoinWaitlistRequest{Name: "Ann, Jr.", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = env.svc.WaitlistService.Join(ctx, env.db, &dto.JoinWaitlistRequest{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.svc.AdminService.ExportWaitlistCSV(env.db, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"name", "email", "joined_at"}, records[0])
	assert.ElementsMatch(t, []string{"Ann, Jr.", "Bob"}, []string{records[1][0], records[2][0]})
	_, err = time.Parse(time.RFC3339, records[1][2])
	assert.NoError(t, err)
}

func TestTicketsAndStats(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := testutil.CreateStudio(t, env.db, "helpme", testutil.Featured(time.Now().UTC().Add(time.Hour)))

	ticket, err := env.svc.SupportService.CreateTicket(env.db, owner.ID, &dto.CreateTicketRequest{
		Type: models.TicketTypeIssue, Subject: " Broken map ", Message: "Pin is wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "Broken map", ticket.Subject)

	mine, err := env.svc.SupportService.ListMine(env.db, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	response := "Fixed, thanks"
	updated, err := env.svc.AdminService.UpdateTicket(env.db, ticket.ID, &dto.UpdateTicketRequest{
		Status: models.TicketStatusResolved, AdminResponse: &response,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)
	assert.Equal(t, models.TicketPriorityMedium, updated.Priority)
	assert.Equal(t, response, updated.AdminResponse)

	_, err = env.svc.AdminService.UpdateTicket(env.db, "missing", &dto.UpdateTicketRequest{})
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	require.NoError(t, env.db.Create(&models.Payment{
		UserID: owner.ID, Provider: models.PaymentProviderStripe, ProviderSessionID: "cs_stats",
		Purpose: models.PaymentPurposeMembership, Status: models.PaymentStatusSucceeded, Amount: 2500, Currency: "gbp",
	}).Error)

	stats, err := env.svc.AdminService.Stats(env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.StudiosByStatus[string(models.StudioStatusActive)])
	assert.Equal(t, int64(1), stats.TicketsByStatus[string(models.TicketStatusResolved)])
	assert.Equal(t, int64(1), stats.FeaturedStudios)
	assert.Equal(t, models.MaxFeaturedStudios, stats.FeaturedLimit)
	assert.Equal(t, int64(2500), stats.RevenueByCurrency["gbp"])
}
