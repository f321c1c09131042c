package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag         = "notblank"
	roleTag             = "role"
	enrollmentStatusTag = "enrollment_status"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(roleTag, roleValidation)
	_ = validate.RegisterValidation(enrollmentStatusTag, enrollmentStatusValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, roleTag, enrollmentStatusTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case roleTag:
		return "must be one of ADMIN, INSTRUCTOR, LEARNER"
	case enrollmentStatusTag:
		return "must be one of ACTIVE, COMPLETED, DROPPED"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func roleValidation(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func enrollmentStatusValidation(fl validator.FieldLevel) bool {
	return models.EnrollmentStatus(fl.Field().String()).Valid()
}

// validateInput checks input against its validate tags and reports every
// failing field by JSON name.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.NewValidationError("", err.Error())
	}

	verr := &apierrors.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, apierrors.FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(translator),
		})
	}
	return verr
}
