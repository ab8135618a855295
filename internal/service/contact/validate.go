package contact

import (
	"errors"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nyaruka/phonenumbers"
)

// honeypotField is hidden from humans by the form; anything in it marks a bot.
const honeypotField = "website"

// leadForm is the sanitized contact payload. Field order here is the order errors are reported in.
type leadForm struct {
	FullName       string `json:"full_name" validate:"required,min=3,max=100"`
	Email          string `json:"email" validate:"required,max=255,email"`
	Phone          string `json:"phone" validate:"omitempty,max=30,phone"`
	Company        string `json:"company" validate:"omitempty,max=100"`
	ServiceNeeded  string `json:"service_needed" validate:"omitempty,max=100"`
	ProjectDetails string `json:"project_details" validate:"required,min=12,max=5000"`
	PageURL        string `json:"page_url" validate:"omitempty,max=500,http_url"`
}

type formValidator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
	fields   []formField
}

type formField struct {
	name  string
	index int
}

func newFormValidator(phoneRegion string) *formValidator {
	if phoneRegion == "" {
		phoneRegion = "US"
	}
	region := strings.ToUpper(phoneRegion)

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		num, err := phonenumbers.Parse(fl.Field().String(), region)
		if err != nil {
			return false
		}
		return phonenumbers.IsPossibleNumber(num)
	})

	t := reflect.TypeOf(leadForm{})
	fields := make([]formField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields = append(fields, formField{name: jsonName(t.Field(i)), index: i})
	}

	return &formValidator{validate: v, policy: bluemonday.StrictPolicy(), fields: fields}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// isBot reports whether the honeypot carries anything other than blank text.
func isBot(payload map[string]any) bool {
	v, ok := payload[honeypotField]
	if !ok || v == nil {
		return false
	}
	s, isString := v.(string)
	return !isString || strings.TrimSpace(s) != ""
}

// sanitize trims and strips markup. Entities the policy produces are decoded again
// because values are stored as plain text and escaped at render time.
func (fv *formValidator) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(fv.policy.Sanitize(strings.TrimSpace(s))))
}

// bind copies the known string fields of payload into a sanitized leadForm and validates it.
func (fv *formValidator) bind(payload map[string]any) (*leadForm, error) {
	var (
		form    leadForm
		details []FieldError
		typeErr = map[string]bool{}
	)

	rv := reflect.ValueOf(&form).Elem()
	for _, f := range fv.fields {
		raw, ok := payload[f.name]
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			typeErr[f.name] = true
			details = append(details, FieldError{Field: f.name, Message: f.name + " must be a string"})
			continue
		}
		rv.Field(f.index).SetString(fv.sanitize(s))
	}
	form.Email = strings.ToLower(form.Email)

	if err := fv.validate.Struct(&form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if typeErr[fe.Field()] {
				continue
			}
			details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: fv.ordered(details)}
	}
	return &form, nil
}

func (fv *formValidator) ordered(details []FieldError) []FieldError {
	out := make([]FieldError, 0, len(details))
	for _, f := range fv.fields {
		for _, d := range details {
			if d.Field == f.name {
				out = append(out, d)
			}
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "phone":
		return "Invalid phone number"
	default:
		return field + " is invalid"
	}
}
