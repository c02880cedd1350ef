package services

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/internal/storage"
	"studiofinder_backend/pkg/apperrors"
)

type AdminService interface {
	// Studios
	ListStudios(db *gorm.DB, q *dto.AdminStudioQuery) (*dto.PaginatedResponse, error)
	GetStudio(db *gorm.DB, studioID string) (*models.StudioProfile, error)
	SetStudioStatus(db *gorm.DB, studioID string, status models.StudioStatus) (*models.StudioProfile, error)
	SetStudioVisibility(db *gorm.DB, studioID string, visible bool) (*models.StudioProfile, error)
	SetStudioVerified(db *gorm.DB, studioID string, verified bool) (*models.StudioProfile, error)
	SetStudioFeatured(db *gorm.DB, studioID string, featured bool) (*models.StudioProfile, error)
	DeleteStudio(ctx context.Context, db *gorm.DB, studioID string) error

	// Users
	ListUsers(db *gorm.DB, q *dto.AdminUserQuery) (*dto.PaginatedResponse, error)
	GetUser(db *gorm.DB, userID string) (*models.User, error)
	SetUserRole(db *gorm.DB, actorID, userID string, role models.UserRole) (*models.User, error)
	SetUserStatus(db *gorm.DB, actorID, userID string, status models.UserStatus) (*models.User, error)
	DeleteUser(ctx context.Context, db *gorm.DB, actorID, userID string) error

	// Notes
	ListNotes(db *gorm.DB, userID string) ([]models.AdminNote, error)
	CreateNote(db *gorm.DB, authorID, userID, content string) (*models.AdminNote, error)
	DeleteNote(db *gorm.DB, userID, noteID string) error

	// Billing
	ListPayments(db *gorm.DB, q *dto.PaymentQuery) (*dto.PaginatedResponse, error)
	SubscriptionOverview(db *gorm.DB) (*dto.SubscriptionOverview, error)

	// Waitlist
	ListWaitlist(db *gorm.DB, q *dto.PageQuery) (*dto.PaginatedResponse, error)
	ExportWaitlistCSV(db *gorm.DB, w io.Writer) error

	// Support
	ListTickets(db *gorm.DB, q *dto.TicketQuery) (*dto.PaginatedResponse, error)
	UpdateTicket(db *gorm.DB, ticketID string, req *dto.UpdateTicketRequest) (*models.SupportTicket, error)

	Stats(db *gorm.DB) (*dto.PlatformStats, error)
}

type AdminServiceImpl struct {
	userRepo         repositories.UserRepository
	studioRepo       repositories.StudioRepository
	imageRepo        repositories.ImageRepository
	noteRepo         repositories.AdminNoteRepository
	paymentRepo      repositories.PaymentRepository
	subscriptionRepo repositories.SubscriptionRepository
	waitlistRepo     repositories.WaitlistRepository
	supportRepo      repositories.SupportRepository
	storage          storage.Storage
	now              func() time.Time
}

func NewAdminService(
	userRepo repositories.UserRepository,
	studioRepo repositories.StudioRepository,
	imageRepo repositories.ImageRepository,
	noteRepo repositories.AdminNoteRepository,
	paymentRepo repositories.PaymentRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	waitlistRepo repositories.WaitlistRepository,
	supportRepo repositories.SupportRepository,
	store storage.Storage,
) AdminService {
	return &AdminServiceImpl{
		userRepo:         userRepo,
		studioRepo:       studioRepo,
		imageRepo:        imageRepo,
		noteRepo:         noteRepo,
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		waitlistRepo:     waitlistRepo,
		supportRepo:      supportRepo,
		storage:          store,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ==========================
// Studios
// ==========================

func (s *AdminServiceImpl) ListStudios(db *gorm.DB, q *dto.AdminStudioQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	studios, total, err := s.studioRepo.FindWithFilter(db, repositories.StudioAdminFilter{
		Status:     models.StudioStatus(q.Status),
		Search:     strings.TrimSpace(q.Query),
		Pagination: repositories.Pagination{Page: page, PageSize: size},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(studios, total, page, size), nil
}

func (s *AdminServiceImpl) GetStudio(db *gorm.DB, studioID string) (*models.StudioProfile, error) {
	studio, err := s.studioRepo.FindByID(db, studioID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return studio, nil
}

func (s *AdminServiceImpl) SetStudioStatus(db *gorm.DB, studioID string, status models.StudioStatus) (*models.StudioProfile, error) {
	fields := map[string]interface{}{"status": status}
	if status != models.StudioStatusActive {
		fields["is_featured"] = false
	}
	return s.updateStudio(db, studioID, fields)
}

func (s *AdminServiceImpl) SetStudioVisibility(db *gorm.DB, studioID string, visible bool) (*models.StudioProfile, error) {
	return s.updateStudio(db, studioID, map[string]interface{}{"is_visible": visible})
}

func (s *AdminServiceImpl) SetStudioVerified(db *gorm.DB, studioID string, verified bool) (*models.StudioProfile, error) {
	return s.updateStudio(db, studioID, map[string]interface{}{"is_verified": verified})
}

// SetStudioFeatured checks the featured cap inside the same transaction
// as the update. A newly featured studio gets the standard window unless it
// already has a later one.
func (s *AdminServiceImpl) SetStudioFeatured(db *gorm.DB, studioID string, featured bool) (*models.StudioProfile, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	studio, err := s.studioRepo.FindByID(tx, studioID)
	if err != nil {
		return nil, handleRepoError(err)
	}

	fields := map[string]interface{}{"is_featured": featured}
	if featured {
		count, err := s.studioRepo.CountFeatured(tx, studio.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if count >= models.MaxFeaturedStudios {
			return nil, apperrors.ErrFeaturedLimit
		}
		now := s.now()
		if studio.FeaturedUntil == nil || !studio.FeaturedUntil.After(now) {
			fields["featured_until"] = now.Add(FeaturedPeriod)
		}
	}

	if err := s.studioRepo.UpdateFields(tx, studio.ID, fields); err != nil {
		return nil, handleRepoError(err)
	}
	updated, err := s.studioRepo.FindByID(tx, studio.ID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *AdminServiceImpl) DeleteStudio(ctx context.Context, db *gorm.DB, studioID string) error {
	studio, err := s.studioRepo.FindByID(db, studioID)
	if err != nil {
		return handleRepoError(err)
	}
	if err := s.studioRepo.Delete(db, studio.ID); err != nil {
		return handleRepoError(err)
	}
	s.removeImages(ctx, studio.Images)
	logger.CtxInfo(ctx, "studio deleted by admin", "studio_id", studio.ID)
	return nil
}

func (s *AdminServiceImpl) updateStudio(db *gorm.DB, studioID string, fields map[string]interface{}) (*models.StudioProfile, error) {
	if err := s.studioRepo.UpdateFields(db, studioID, fields); err != nil {
		return nil, handleRepoError(err)
	}
	return s.GetStudio(db, studioID)
}

// removeImages deletes stored files after their rows are gone. Failures
// leave orphaned files behind and are only logged.
func (s *AdminServiceImpl) removeImages(ctx context.Context, images []models.StudioImage) {
	for _, img := range images {
		if err := s.storage.Delete(ctx, img.PublicID); err != nil {
			logger.CtxWarn(ctx, "failed to delete stored image", "public_id", img.PublicID, "error", err)
		}
	}
}

// ==========================
// Users
// ==========================

func (s *AdminServiceImpl) ListUsers(db *gorm.DB, q *dto.AdminUserQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:       models.UserRole(q.Role),
		Status:     models.UserStatus(q.Status),
		Search:     strings.TrimSpace(q.Query),
		Pagination: repositories.Pagination{Page: page, PageSize: size},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(users, total, page, size), nil
}

func (s *AdminServiceImpl) GetUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return user, nil
}

func (s *AdminServiceImpl) SetUserRole(db *gorm.DB, actorID, userID string, role models.UserRole) (*models.User, error) {
	if actorID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"role": role}); err != nil {
		return nil, handleRepoError(err)
	}
	return s.GetUser(db, userID)
}

func (s *AdminServiceImpl) SetUserStatus(db *gorm.DB, actorID, userID string, status models.UserStatus) (*models.User, error) {
	if actorID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"status": status}); err != nil {
		return nil, handleRepoError(err)
	}
	return s.GetUser(db, userID)
}

func (s *AdminServiceImpl) DeleteUser(ctx context.Context, db *gorm.DB, actorID, userID string) error {
	if actorID == userID {
		return apperrors.ErrCannotModifySelf
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return handleRepoError(err)
	}

	var images []models.StudioImage
	if user.Studio != nil {
		images, err = s.imageRepo.ListByStudio(db, user.Studio.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
	}

	if err := s.userRepo.Delete(db, user.ID); err != nil {
		return handleRepoError(err)
	}
	s.removeImages(ctx, images)
	logger.CtxInfo(ctx, "user deleted by admin", "user_id", user.ID)
	return nil
}

// ==========================
// Notes
// ==========================

func (s *AdminServiceImpl) ListNotes(db *gorm.DB, userID string) ([]models.AdminNote, error) {
	notes, err := s.noteRepo.ListForUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return notes, nil
}

func (s *AdminServiceImpl) CreateNote(db *gorm.DB, authorID, userID, content string) (*models.AdminNote, error) {
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, handleRepoError(err)
	}
	note := &models.AdminNote{UserID: userID, AuthorID: authorID, Content: strings.TrimSpace(content)}
	if err := s.noteRepo.Create(db, note); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return note, nil
}

func (s *AdminServiceImpl) DeleteNote(db *gorm.DB, userID, noteID string) error {
	return handleRepoError(s.noteRepo.Delete(db, userID, noteID))
}

// ==========================
// Billing
// ==========================

func (s *AdminServiceImpl) ListPayments(db *gorm.DB, q *dto.PaymentQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	rows, total, err := s.paymentRepo.FindWithFilter(db, repositories.PaymentFilter{
		Provider:   models.PaymentProvider(q.Provider),
		Status:     models.PaymentStatus(q.Status),
		Pagination: repositories.Pagination{Page: page, PageSize: size},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(rows, total, page, size), nil
}

// SubscriptionOverview lists counts by status and active subscriptions
// ending within 30 days.
func (s *AdminServiceImpl) SubscriptionOverview(db *gorm.DB) (*dto.SubscriptionOverview, error) {
	byStatus, err := s.subscriptionRepo.CountByStatus(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	endingSoon, err := s.subscriptionRepo.ListActiveEndingBefore(db, s.now().Add(30*24*time.Hour))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.SubscriptionOverview{ByStatus: byStatus, EndingSoon: endingSoon}, nil
}

// ==========================
// Waitlist
// ==========================

func (s *AdminServiceImpl) ListWaitlist(db *gorm.DB, q *dto.PageQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	entries, total, err := s.waitlistRepo.List(db, repositories.Pagination{Page: page, PageSize: size})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(entries, total, page, size), nil
}

func (s *AdminServiceImpl) ExportWaitlistCSV(db *gorm.DB, w io.Writer) error {
	entries, err := s.waitlistRepo.All(db)
	if err != nil {
		return apperrors.InternalError(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "email", "joined_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Email, e.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ==========================
// Support
// ==========================

func (s *AdminServiceImpl) ListTickets(db *gorm.DB, q *dto.TicketQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	tickets, total, err := s.supportRepo.FindWithFilter(db, repositories.TicketFilter{
		Status:     models.TicketStatus(q.Status),
		Type:       models.TicketType(q.Type),
		Pagination: repositories.Pagination{Page: page, PageSize: size},
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(tickets, total, page, size), nil
}

func (s *AdminServiceImpl) UpdateTicket(db *gorm.DB, ticketID string, req *dto.UpdateTicketRequest) (*models.SupportTicket, error) {
	ticket, err := s.supportRepo.FindByID(db, ticketID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if req.Status != "" {
		ticket.Status = req.Status
	}
	if req.Priority != "" {
		ticket.Priority = req.Priority
	}
	if req.AdminResponse != nil {
		ticket.AdminResponse = strings.TrimSpace(*req.AdminResponse)
	}
	if err := s.supportRepo.Update(db, ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticket, nil
}

// ==========================
// Stats
// ==========================

func (s *AdminServiceImpl) Stats(db *gorm.DB) (*dto.PlatformStats, error) {
	stats := &dto.PlatformStats{FeaturedLimit: models.MaxFeaturedStudios}
	var err error

	if stats.UsersByStatus, err = s.userRepo.CountByStatus(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.StudiosByStatus, err = s.studioRepo.CountByStatus(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.SubscriptionsByStatus, err = s.subscriptionRepo.CountByStatus(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.TicketsByStatus, err = s.supportRepo.CountByStatus(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.FeaturedStudios, err = s.studioRepo.CountFeatured(db, ""); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.WaitlistEntries, err = s.waitlistRepo.Count(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.RevenueByCurrency, err = s.paymentRepo.SumSucceeded(db); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return stats, nil
}
