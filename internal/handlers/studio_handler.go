package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/services"
	"studiofinder_backend/internal/services/dto"
	"studiofinder_backend/pkg/apperrors"
)

type StudioHandler struct {
	*BaseHandler
	studioService services.StudioService
}

func NewStudioHandler(base *BaseHandler, studioService services.StudioService) *StudioHandler {
	return &StudioHandler{
		BaseHandler:   base,
		studioService: studioService,
	}
}

// RegisterRoutes регистрирует публичные маршруты студий и кабинет владельца
func (h *StudioHandler) RegisterRoutes(rg *gin.RouterGroup) {
	studios := rg.Group("/studios")
	{
		studios.GET("", h.Search)
		studios.GET("/featured", h.Featured)
		studios.GET("/suggestions", h.guards.RateLimit, h.Suggestions)
		studios.GET("/:username", h.GetByUsername)
	}

	mine := rg.Group("/me/studio", h.guards.Auth)
	{
		mine.GET("", h.GetMine)
		mine.PATCH("", h.UpdateMine)
		mine.POST("/images", h.UploadImage)
		mine.PUT("/images/order", h.ReorderImages)
		mine.DELETE("/images/:imageId", h.DeleteImage)
	}
}

// --- Public ---

func (h *StudioHandler) Search(c *gin.Context) {
	var req dto.SearchStudiosRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	response, err := h.studioService.Search(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *StudioHandler) Featured(c *gin.Context) {
	studios, err := h.studioService.Featured(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studios)
}

func (h *StudioHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.studioService.Suggestions(c.Request.Context(), h.GetDB(c), c.Query("q"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *StudioHandler) GetByUsername(c *gin.Context) {
	username, ok := RequiredParam(c, "username")
	if !ok {
		return
	}

	studio, err := h.studioService.GetByUsername(h.GetDB(c), username)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

// --- Owner ---

func (h *StudioHandler) GetMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	studio, err := h.studioService.GetMine(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

func (h *StudioHandler) UpdateMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateStudioRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	studio, err := h.studioService.UpdateMine(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, studio)
}

// UploadImage принимает multipart поле "file" и необязательное "alt_text".
func (h *StudioHandler) UploadImage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// One byte over the limit is enough for the service to reject it.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
			return
		}
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing file field"))
		return
	}
	if fileHeader.Size > services.MaxImageBytes {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	image, err := h.studioService.UploadImage(c.Request.Context(), h.GetDB(c), userID, data, c.PostForm("alt_text"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *StudioHandler) DeleteImage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	imageID, ok := RequiredParam(c, "imageId")
	if !ok {
		return
	}

	if err := h.studioService.DeleteImage(c.Request.Context(), h.GetDB(c), userID, imageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StudioHandler) ReorderImages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ReorderImagesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	images, err := h.studioService.ReorderImages(h.GetDB(c), userID, req.ImageIDs)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}
