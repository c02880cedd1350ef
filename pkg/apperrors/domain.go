package apperrors

import (
	"net/http"
)

// --- Auth & users ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password must be at least 8 characters long",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"admin",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// --- Signup ---

var ErrUsernameTaken = New(
	CodeAlreadyExists,
	"signup",
	"Username is already taken",
	http.StatusConflict,
)

var ErrInvalidUsername = New(
	CodeValidationFailed,
	"signup",
	"Username must be 3-30 characters: lowercase letters, digits, '-' or '_'",
	http.StatusBadRequest,
)

var ErrUsernameLocked = New(
	CodeInvalidOperation,
	"signup",
	"Username cannot be changed once the studio is live",
	http.StatusBadRequest,
)

var ErrUsernameRequired = New(
	CodeInvalidOperation,
	"signup",
	"Choose a username before paying for a membership",
	http.StatusBadRequest,
)

var ErrMembershipRequired = New(
	CodeForbidden,
	"membership",
	"An active membership is required",
	http.StatusForbidden,
)

// --- Studios ---

var ErrStudioNotFound = New(
	CodeNotFound,
	"studio",
	"Studio not found",
	http.StatusNotFound,
)

var ErrImageNotFound = New(
	CodeNotFound,
	"studio",
	"Image not found",
	http.StatusNotFound,
)

var ErrFeaturedLimit = New(
	CodeLimitExceeded,
	"studio",
	"The maximum number of featured studios has been reached",
	http.StatusConflict,
)

var ErrImageLimit = New(
	CodeLimitExceeded,
	"studio",
	"The maximum number of images for this studio has been reached",
	http.StatusConflict,
)

var ErrPayloadTooLarge = New(
	CodeLimitExceeded,
	"payment",
	"Webhook payload exceeds the allowed size",
	http.StatusRequestEntityTooLarge,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Payments ---

var ErrInvalidWebhookSignature = New(
	CodeInvalidSignature,
	"payment",
	"Webhook signature verification failed",
	http.StatusBadRequest,
)

var ErrInvalidPaymentMetadata = New(
	CodeValidationFailed,
	"payment",
	"Payment metadata is missing or invalid",
	http.StatusBadRequest,
)

var ErrPaymentProviderUnavailable = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider is not configured",
	http.StatusServiceUnavailable,
)

// --- Campaigns ---

var ErrCampaignNotFound = New(
	CodeNotFound,
	"campaign",
	"Campaign not found",
	http.StatusNotFound,
)

var ErrCampaignNotEditable = New(
	CodeInvalidStatus,
	"campaign",
	"Only draft campaigns can be edited or deleted",
	http.StatusConflict,
)

var ErrCampaignNothingToSend = New(
	CodeInvalidStatus,
	"campaign",
	"Campaign has already been sent to every recipient",
	http.StatusConflict,
)

var ErrCampaignSending = New(
	CodeConflict,
	"campaign",
	"Campaign is already being sent",
	http.StatusConflict,
)

var ErrCampaignInterrupted = New(
	CodeExternalServiceError,
	"campaign",
	"Campaign sending was interrupted, send again to resume",
	http.StatusServiceUnavailable,
)

// --- Support ---

var ErrTicketNotFound = New(
	CodeNotFound,
	"support",
	"Support ticket not found",
	http.StatusNotFound,
)

var ErrNoteNotFound = New(
	CodeNotFound,
	"admin",
	"Note not found",
	http.StatusNotFound,
)

// --- Misc ---

var ErrRateLimited = New(
	CodeRateLimited,
	"request",
	"Too many requests, slow down",
	http.StatusTooManyRequests,
)
