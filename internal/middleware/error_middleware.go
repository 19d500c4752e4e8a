package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/allotment/internal/app/models/dto"
	"github.com/yigit/allotment/internal/pkg/apperrors"
	"github.com/yigit/allotment/internal/pkg/dberrors"
	"github.com/yigit/allotment/internal/pkg/logger"
)

// Messages shown to clients. Internal error text is never returned.
const (
	MsgUploadFailed    = "Upload failed"
	MsgStudentNotFound = "No data found for given ID Number"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrImportFailed):
		if isImportClientError(err) {
			return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeImportRejected, MsgUploadFailed).
				WithField("file").
				WithSeverity(dto.ErrorSeverityWarning)
		}
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeImportFailed, MsgUploadFailed)
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, MsgStudentNotFound).
			WithSeverity(dto.ErrorSeverityInfo)
	case errors.Is(err, apperrors.ErrInvalidIDNo):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "ID Number is required").
			WithField("idno")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")
	case dberrors.IsQueryCanceled(err) || errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeTimeout, "Request timed out, please retry")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// isImportClientError reports whether an import failed because of the
// uploaded file rather than storage
func isImportClientError(err error) bool {
	return apperrors.Is(err, apperrors.ErrEmptyUpload,
		apperrors.ErrUnsupportedFileType,
		apperrors.ErrUploadTooLarge,
		apperrors.ErrMalformedFile)
}
