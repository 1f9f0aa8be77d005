package usecase

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/phone"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.IsPlausible(fl.Field().String())
	})
	return v
}

// validateStruct splits validator output into missing required fields and
// other per-field problems, both keyed by JSON name.
func validateStruct(input interface{}) (missing []string, problems []ValidationError) {
	err := validate.Struct(input)
	if err == nil {
		return nil, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, []ValidationError{{Field: "input", Message: err.Error()}}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		problems = append(problems, ValidationError{Field: fe.Field(), Message: describeTag(fe)})
	}
	sort.Strings(missing)
	return missing, problems
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "is invalid"
	case "phone":
		return "must be a valid phone number"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// newValidationError builds the DomainError returned for a rejected request.
func newValidationError(missing []string, problems []ValidationError) *DomainError {
	if len(missing) > 0 {
		return &DomainError{
			Code:    CodeValidation,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
			Missing: missing,
		}
	}
	msgs := make([]string, 0, len(problems))
	fields := make([]string, 0, len(problems))
	for _, p := range problems {
		msgs = append(msgs, p.Error())
		fields = append(fields, p.Field)
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(msgs, ", "),
		Fields:  fields,
	}
}

func checkInput(input interface{}) *DomainError {
	missing, problems := validateStruct(input)
	if len(missing) == 0 && len(problems) == 0 {
		return nil
	}
	return newValidationError(missing, problems)
}

// isUUID accepts only the canonical 36-character form the stores issue.
func isUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func invalidLeadID() *DomainError {
	return &DomainError{Code: CodeInvalidID, Message: "invalid lead id", Fields: []string{"id"}}
}
