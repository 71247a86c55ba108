package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/models"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// registerValidations installs the student and admission rules on v. Field
// names in reported errors follow the JSON names.
func registerValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("student_status", func(fl validator.FieldLevel) bool {
		return models.StudentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("admission_status", func(fl validator.FieldLevel) bool {
		return models.AdmissionStatus(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		student := sl.Current().Interface().(dto.StudentDTO)
		if student.DateOfBirth != nil && !student.DateOfBirth.Before(models.Today()) {
			sl.ReportError(student.DateOfBirth, "dateOfBirth", "DateOfBirth", "past", "")
		}
	}, dto.StudentDTO{})
}

// validationError turns validator output into a 400 listing every failing field.
func validationError(err error, subject string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+subject+" payload")
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" "+describe(fe))
	}
	message := fmt.Sprintf("invalid %s payload: %s", subject, strings.Join(parts, "; "))
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "phone":
		return "must be 10 to 15 digits with an optional leading +"
	case "past":
		return "must be a date in the past"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "student_status":
		return "must be one of " + joinStatuses(models.AllStudentStatuses)
	case "admission_status":
		return "must be one of " + joinStatuses(models.AllAdmissionStatuses)
	default:
		return "failed on the " + fe.Tag() + " rule"
	}
}

func joinStatuses[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
