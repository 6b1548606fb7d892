package handler

import (
	"errors"
	"strings"

	"github.com/butecobot/challenge-api/src/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrorResponse is the envelope for every domain and validation error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// respondWithError maps a domain error to its HTTP status and writes the
// {"detail": ...} envelope. Non-domain errors report 500.
func respondWithError(c *gin.Context, err error) {
	domainErr := domain.AsDomainError(err)

	// Fall back to the raw error text when the domain error carries no
	// client message.
	message := domainErr.ClientMsg()
	if message == "" {
		message = err.Error()
	}

	ctx := c.Request.Context()
	zerolog.Ctx(ctx).Error().
		Str("function", "respondWithError").
		Str("error_name", domainErr.Name()).
		Int("http_status", domainErr.HTTPStatus()).
		Msg(message)

	_ = c.Error(err)
	c.AbortWithStatusJSON(domainErr.HTTPStatus(), ErrorResponse{Detail: message})
}

// respondWithDetail writes the error envelope with an explicit status for
// routes that override the default mapping.
func respondWithDetail(c *gin.Context, httpStatus int, message string) {
	ctx := c.Request.Context()
	zerolog.Ctx(ctx).Error().
		Str("function", "respondWithDetail").
		Int("http_status", httpStatus).
		Msg(message)

	c.AbortWithStatusJSON(httpStatus, ErrorResponse{Detail: message})
}

// respondWithValidationError turns a binding failure into a 400 naming the
// first field that failed.
func respondWithValidationError(c *gin.Context, err error) {
	respondWithError(c, domain.NewError(domain.ErrorCodeParameterInvalid, err,
		domain.WithMsg("%s", validationMessage(err))))
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		field := jsonFieldName(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required", "notblank":
			return field + " is required"
		case "max":
			return field + " must be at most " + fieldErr.Param() + " characters"
		default:
			return field + " is invalid"
		}
	}
	return "Invalid request payload"
}

// jsonFieldName lowercases the leading rune so validator's struct field
// names line up with the JSON payload keys.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
