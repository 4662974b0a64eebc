package helper

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"article-api/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

const (
	textError = `error`
	textOk    = `ok`

	internalMessage = "internal server error"
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  string
	Data     interface{}
	Code     int
	CodeType string
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     *slog.Logger
}

// NewHTTPHelper builds a validator whose messages are translated to English and keyed by json field name.
func NewHTTPHelper(logger *slog.Logger) (*HTTPHelper, error) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonTagName)
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register validator translations: %w", err)
	}

	return &HTTPHelper{
		Validate:   validate,
		Translator: trans,
		Logger:     logger,
	}, nil
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		invalid      models.ErrorInvalidArgument
		unauthorized models.ErrorUnauthorized
		forbidden    models.ErrorForbidden
		notFound     models.ErrorNotFound
		conflict     models.ErrorConflict
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return `badRequest`
	case http.StatusUnauthorized:
		return `unAuthorized`
	case http.StatusForbidden:
		return `forbidden`
	case http.StatusNotFound:
		return `notFound`
	case http.StatusConflict:
		return `conflict`
	case http.StatusTooManyRequests:
		return `tooManyRequests`
	default:
		return `internalError`
	}
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send an error response with the status matching the error kind. Internal
// failures are logged and their cause is not returned to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, err error) error {
	status := u.GetStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		if u.Logger != nil {
			u.Logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(RequestIDKey),
				"error", err,
			)
		}
		message = internalMessage
	}

	return u.SendErrorStatus(c, status, message)
}

// SendErrorStatus ...
// Send an error response with an explicit HTTP status.
func (u *HTTPHelper) SendErrorStatus(c *gin.Context, status int, message string) error {
	res := u.SetResponse(c, textError, message, u.EmptyJsonMap(), status, codeType(status))

	return u.SendResponse(res)
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) error {
	return u.SendErrorStatus(c, http.StatusBadRequest, message)
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) error {
	return u.SendErrorStatus(c, http.StatusUnauthorized, message)
}

// ValidateRequest runs struct validation and answers 400 on failure.
func (u *HTTPHelper) ValidateRequest(c *gin.Context, req interface{}) bool {
	err := u.Validate.Struct(req)
	if err == nil {
		return true
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		u.SendValidationError(c, validationErrors)
		return false
	}
	u.SendBadRequest(c, err.Error())
	return false
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) error {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := Underscore(err.Field())
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	c.JSON(http.StatusBadRequest, map[string]interface{}{
		"code":         http.StatusBadRequest,
		"code_type":    "validationError",
		"code_message": errorResponse,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, http.StatusOK, `success`)

	return u.SendResponse(res)
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	res.C.JSON(res.Code, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}
