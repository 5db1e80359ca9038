package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/i18n"
	"expense-tracker-backend/logger"
	"expense-tracker-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorRenderer turns errors into localized JSON responses. The language is
// resolved by the caller once per request and passed in.
type ErrorRenderer struct {
	translator *i18n.Translator
}

func NewErrorRenderer(translator *i18n.Translator) *ErrorRenderer {
	return &ErrorRenderer{translator: translator}
}

func (r *ErrorRenderer) Language(c *gin.Context) string {
	return r.translator.Resolve(c.GetHeader("Accept-Language"))
}

func (r *ErrorRenderer) Render(c *gin.Context, lang string, err error) {
	_ = c.Error(err)

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{
				Field:      fe.Field(),
				MessageKey: "VALIDATION." + fe.Tag(),
				Params:     map[string]string{"param": fe.Param()},
			})
		}
		r.renderAppError(c, lang, apperr.Validation(fields...))

	case errors.As(err, &typeErr):
		r.renderAppError(c, lang, apperr.Validation(apperr.FieldError{
			Field:      typeErr.Field,
			MessageKey: "VALIDATION.type",
		}))

	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		r.renderAppError(c, lang, apperr.ErrInvalidJSON)

	default:
		if appErr, ok := apperr.As(err); ok {
			r.renderAppError(c, lang, appErr)
			return
		}
		logger.FromGin(c).Error("Unhandled error", zap.Error(err))
		r.Internal(c, lang)
	}
}

// Internal writes the generic 500 body. Nothing about the cause reaches the client.
func (r *ErrorRenderer) Internal(c *gin.Context, lang string) {
	utils.ErrorResponse(c, http.StatusInternalServerError, utils.ErrorBody{
		Error: r.translator.T(lang, "GENERAL.INTERNAL_SERVER_ERROR", nil),
	})
}

func (r *ErrorRenderer) renderAppError(c *gin.Context, lang string, appErr *apperr.AppError) {
	body := utils.ErrorBody{
		Error: r.translator.T(lang, appErr.MessageKey, appErr.Params),
		Code:  appErr.Code,
	}
	for _, fe := range appErr.Fields {
		body.Details = append(body.Details, utils.FieldDetail{
			Field:   fe.Field,
			Message: r.fieldMessage(lang, fe),
		})
	}

	status := appErr.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	utils.ErrorResponse(c, status, body)
}

func (r *ErrorRenderer) fieldMessage(lang string, fe apperr.FieldError) string {
	params := map[string]string{"field": fe.Field}
	for k, v := range fe.Params {
		params[k] = v
	}
	key := fe.MessageKey
	if !r.translator.Has(lang, key) && !r.translator.Has(r.translator.Fallback(), key) {
		key = "VALIDATION.default"
	}
	return r.translator.T(lang, key, params)
}
