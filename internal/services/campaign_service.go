package services

import (
	"context"
	"html/template"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"studiofinder_backend/internal/email"
	"studiofinder_backend/internal/logger"
	"studiofinder_backend/internal/metrics"
	"studiofinder_backend/internal/models"
	"studiofinder_backend/internal/repositories"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

const previewSampleSize = 5

type CampaignService interface {
	Create(db *gorm.DB, authorID string, req *dto.CampaignRequest) (*models.EmailCampaign, error)
	Update(db *gorm.DB, campaignID string, req *dto.CampaignRequest) (*models.EmailCampaign, error)
	List(db *gorm.DB, q *dto.PageQuery) (*dto.PaginatedResponse, error)
	Get(db *gorm.DB, campaignID string) (*models.EmailCampaign, error)
	Delete(db *gorm.DB, campaignID string) error
	Preview(db *gorm.DB, campaignID string) (*dto.CampaignPreview, error)
	Send(ctx context.Context, db *gorm.DB, campaignID string) (*dto.CampaignSendResult, error)
	Deliveries(db *gorm.DB, campaignID string, q *dto.DeliveryQuery) (*dto.PaginatedResponse, error)
}

type CampaignServiceImpl struct {
	campaignRepo repositories.CampaignRepository
	userRepo     repositories.UserRepository
	waitlistRepo repositories.WaitlistRepository
	provider     email.Provider
	limiter      *rate.Limiter
	now          func() time.Time
}

// NewCampaignService throttles sends to perSecond; zero or less means
// unthrottled.
func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	userRepo repositories.UserRepository,
	waitlistRepo repositories.WaitlistRepository,
	provider email.Provider,
	perSecond float64,
) CampaignService {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &CampaignServiceImpl{
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		waitlistRepo: waitlistRepo,
		provider:     provider,
		limiter:      rate.NewLimiter(limit, 1),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *CampaignServiceImpl) Create(db *gorm.DB, authorID string, req *dto.CampaignRequest) (*models.EmailCampaign, error) {
	campaign := &models.EmailCampaign{
		CreatedBy: authorID,
		Name:      strings.TrimSpace(req.Name),
		Subject:   strings.TrimSpace(req.Subject),
		HTMLBody:  req.HTMLBody,
		Audience:  req.Audience,
		Status:    models.CampaignStatusDraft,
	}
	if err := s.campaignRepo.Create(db, campaign); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return campaign, nil
}

func (s *CampaignServiceImpl) Update(db *gorm.DB, campaignID string, req *dto.CampaignRequest) (*models.EmailCampaign, error) {
	campaign, err := s.Get(db, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusDraft {
		return nil, apperrors.ErrCampaignNotEditable
	}

	campaign.Name = strings.TrimSpace(req.Name)
	campaign.Subject = strings.TrimSpace(req.Subject)
	campaign.HTMLBody = req.HTMLBody
	campaign.Audience = req.Audience
	if err := s.campaignRepo.Update(db, campaign); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return campaign, nil
}

func (s *CampaignServiceImpl) List(db *gorm.DB, q *dto.PageQuery) (*dto.PaginatedResponse, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	campaigns, total, err := s.campaignRepo.List(db, repositories.Pagination{Page: page, PageSize: size})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(campaigns, total, page, size), nil
}

func (s *CampaignServiceImpl) Get(db *gorm.DB, campaignID string) (*models.EmailCampaign, error) {
	campaign, err := s.campaignRepo.FindByID(db, campaignID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return campaign, nil
}

func (s *CampaignServiceImpl) Delete(db *gorm.DB, campaignID string) error {
	campaign, err := s.Get(db, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != models.CampaignStatusDraft {
		return apperrors.ErrCampaignNotEditable
	}
	return handleRepoError(s.campaignRepo.Delete(db, campaign.ID))
}

func (s *CampaignServiceImpl) Preview(db *gorm.DB, campaignID string) (*dto.CampaignPreview, error) {
	campaign, err := s.Get(db, campaignID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.recipients(db, campaign.Audience)
	if err != nil {
		return nil, err
	}
	sent, err := s.campaignRepo.SentEmails(db, campaign.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	preview := &dto.CampaignPreview{
		Audience:     campaign.Audience,
		Recipients:   len(recipients),
		SampleEmails: make([]string, 0, previewSampleSize),
	}
	for _, r := range recipients {
		if sent[r.Email] {
			preview.AlreadySent++
			continue
		}
		preview.PendingToSend++
		if len(preview.SampleEmails) < previewSampleSize {
			preview.SampleEmails = append(preview.SampleEmails, r.Email)
		}
	}
	return preview, nil
}

// Send delivers the campaign to every recipient without a successful
// delivery yet, so a re-send only retries failed or new recipients. Only one
// send per campaign runs at a time.
func (s *CampaignServiceImpl) Send(ctx context.Context, db *gorm.DB, campaignID string) (*dto.CampaignSendResult, error) {
	campaign, err := s.Get(db, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusSending {
		return nil, apperrors.ErrCampaignSending
	}

	recipients, err := s.recipients(db, campaign.Audience)
	if err != nil {
		return nil, err
	}
	sent, err := s.campaignRepo.SentEmails(db, campaign.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	pending := make([]repositories.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if !sent[r.Email] {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return nil, apperrors.ErrCampaignNothingToSend
	}

	claimed, err := s.campaignRepo.ClaimForSending(db, campaign.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !claimed {
		return nil, apperrors.ErrCampaignSending
	}
	campaign.Status = models.CampaignStatusSending
	logger.CtxInfo(ctx, "campaign sending started", "campaign_id", campaign.ID, "recipients", len(pending))

	result := &dto.CampaignSendResult{Attempted: len(pending)}
	body := template.HTML(campaign.HTMLBody)
	var interrupted error
	for _, r := range pending {
		if err := s.limiter.Wait(ctx); err != nil {
			interrupted = err
			break
		}

		sendErr := s.provider.SendTemplate(ctx, []string{r.Email}, campaign.Subject, email.TemplateCampaign, email.TemplateData{
			"Name": r.Name,
			"Body": body,
		})
		metrics.RecordEmail(email.TemplateCampaign, sendErr)

		delivery := &models.EmailDelivery{CampaignID: campaign.ID, Email: r.Email, UserID: r.UserID}
		if sendErr != nil {
			delivery.Status = models.DeliveryStatusFailed
			delivery.Error = sendErr.Error()
			result.Failed++
		} else {
			at := s.now()
			delivery.Status = models.DeliveryStatusSent
			delivery.SentAt = &at
			result.Sent++
		}
		if err := s.campaignRepo.SaveDelivery(db, delivery); err != nil {
			logger.CtxWithError(ctx, "failed to record campaign delivery", err, "campaign_id", campaign.ID)
		}
	}

	if interrupted != nil {
		logger.CtxWarn(ctx, "campaign send interrupted",
			"campaign_id", campaign.ID, "sent", result.Sent, "remaining", len(pending)-result.Sent-result.Failed, "error", interrupted)
		if err := s.finish(db, campaign, true); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrCampaignInterrupted.WithError(interrupted)
	}

	if err := s.finish(db, campaign, false); err != nil {
		return nil, err
	}
	result.Campaign = campaign

	logger.CtxInfo(ctx, "campaign sending finished",
		"campaign_id", campaign.ID, "sent", result.Sent, "failed", result.Failed, "status", campaign.Status)
	return result, nil
}

// finish recomputes totals from the delivery log and sets the final status:
// FAILED when nothing was ever delivered or the send was interrupted, so the
// campaign can be sent again.
func (s *CampaignServiceImpl) finish(db *gorm.DB, campaign *models.EmailCampaign, interrupted bool) error {
	counts, err := s.campaignRepo.CountDeliveries(db, campaign.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	campaign.SentCount = int(counts[string(models.DeliveryStatusSent)])
	campaign.FailedCount = int(counts[string(models.DeliveryStatusFailed)])

	if interrupted || (campaign.SentCount == 0 && campaign.FailedCount > 0) {
		campaign.Status = models.CampaignStatusFailed
	} else {
		campaign.Status = models.CampaignStatusSent
		now := s.now()
		campaign.SentAt = &now
	}
	if err := s.campaignRepo.Update(db, campaign); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *CampaignServiceImpl) Deliveries(db *gorm.DB, campaignID string, q *dto.DeliveryQuery) (*dto.PaginatedResponse, error) {
	if _, err := s.Get(db, campaignID); err != nil {
		return nil, err
	}
	page, size := normalizePage(q.Page, q.PageSize)
	deliveries, total, err := s.campaignRepo.ListDeliveries(db, campaignID, models.DeliveryStatus(q.Status),
		repositories.Pagination{Page: page, PageSize: size})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(deliveries, total, page, size), nil
}

// recipients resolves an audience to unique lowercased addresses, keeping
// the first occurrence of each.
func (s *CampaignServiceImpl) recipients(db *gorm.DB, audience models.CampaignAudience) ([]repositories.Recipient, error) {
	var (
		list []repositories.Recipient
		err  error
	)
	switch audience {
	case models.CampaignAudienceAllUsers:
		list, err = s.userRepo.AllEmails(db)
	case models.CampaignAudienceStudioOwners:
		list, err = s.userRepo.StudioOwnerEmails(db)
	case models.CampaignAudienceWaitlist:
		var entries []models.WaitlistEntry
		entries, err = s.waitlistRepo.All(db)
		for _, e := range entries {
			list = append(list, repositories.Recipient{Email: e.Email, Name: e.Name})
		}
	default:
		return nil, apperrors.NewBadRequestError("Unknown campaign audience")
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	seen := make(map[string]bool, len(list))
	out := make([]repositories.Recipient, 0, len(list))
	for _, r := range list {
		r.Email = normalizeEmail(r.Email)
		if r.Email == "" || seen[r.Email] {
			continue
		}
		seen[r.Email] = true
		out = append(out, r)
	}
	return out, nil
}
