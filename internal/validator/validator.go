package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/classwork-backend/internal/question"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerDomainTags(v)
	}
}

// registerDomainTags adds tags for values checked against the question registry.
//   - questiontype:   one of the registered question kinds
//   - assignmenttype: a registered kind or MIXED
func registerDomainTags(v *govalidator.Validate) {
	_ = v.RegisterValidation("questiontype", func(fl govalidator.FieldLevel) bool {
		return question.IsKnown(fl.Field().String())
	})
	_ = v.RegisterValidation("assignmenttype", func(fl govalidator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "MIXED" || question.IsKnown(s)
	})

	if trans == nil {
		return
	}
	for tag, msg := range map[string]string{
		"questiontype":   "{0} must be a supported question type",
		"assignmenttype": "{0} must be a supported question type or MIXED",
	} {
		msg := msg
		_ = v.RegisterTranslation(tag, trans,
			func(u ut.Translator) error { return u.Add(tag, msg, true) },
			func(u ut.Translator, fe govalidator.FieldError) string {
				t, _ := u.T(fe.Tag(), fe.Field())
				return t
			})
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindPayload binds a request that is either plain JSON or multipart form
// data carrying the JSON document in the "payload" field next to its files.
func BindPayload(c *gin.Context, dst interface{}) map[string]string {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return Bind(c, dst)
	}

	raw := c.PostForm("payload")
	if raw == "" {
		return map[string]string{"payload": "payload is required"}
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return map[string]string{"payload": fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
