package handlers

import (
	"net/http"

	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// HandleServiceError writes the envelope for err. Internal and
// unclassified errors are logged and answered with a generic 500.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	status := services.GetErrorType(err).Status()
	message := services.GetErrorMessage(err)
	details := services.GetErrorDetails(err)
	if status == http.StatusInternalServerError {
		if services.IsInternalError(err) {
			logger.Error("internal server error", zap.Error(err))
		} else {
			logger.Error("unhandled error type", zap.Error(err))
		}
		message, details = "", nil
	}

	if writeErr := utils.WriteError(w, status, message, details); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		details := make(map[string]interface{})
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
