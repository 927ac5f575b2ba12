package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"jios-backend/pkg/models"

	"github.com/go-playground/validator/v10"
)

// Validator 请求体校验（字段规则 + Jio 时间窗规则）
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

// NewValidator builds a validator whose calendar-day and "after now" rules use
// the given clock and zone.
func NewValidator(now func() time.Time, loc *time.Location) *Validator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	v := &Validator{validate: validator.New(), now: now, loc: loc}

	// report json field names instead of Go field names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return lowerFirst(fld.Name)
		}
		return name
	})
	v.validate.RegisterStructValidation(v.createJioRules, models.CreateJioRequest{})
	// fixed, non-reserved tag names: registration cannot fail
	_ = v.validate.RegisterValidation("jiotype", validJioType)
	_ = v.validate.RegisterValidation("telegram", validTelegramHandle)
	return v
}

func validJioType(fl validator.FieldLevel) bool {
	return models.JioType(fl.Field().String()).Valid()
}

// Telegram usernames: 5-32 chars, letters/digits/underscore, starting with a letter.
var telegramHandle = regexp.MustCompile(`^@?[A-Za-z][A-Za-z0-9_]{4,31}$`)

func validTelegramHandle(fl validator.FieldLevel) bool {
	return telegramHandle.MatchString(strings.TrimSpace(fl.Field().String()))
}

// Struct validates s and returns validator.ValidationErrors on failure.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// createJioRules mirrors the client-side form checks for new Jios.
func (v *Validator) createJioRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreateJioRequest)

	if req.Type.RequiresPrice() && req.Price == nil {
		sl.ReportError(req.Price, "price", "Price", "required_for_type", string(req.Type))
	}

	if req.StartDateTime == nil || req.EndDateTime == nil {
		return
	}
	start, end := req.StartDateTime.Time, req.EndDateTime.Time

	if !SameDay(start, end, v.loc) {
		sl.ReportError(req.EndDateTime, "endDateTime", "EndDateTime", "same_day", "")
	}
	if !start.Before(end) {
		sl.ReportError(req.StartDateTime, "startDateTime", "StartDateTime", "before_end", "")
	}
	now := v.now()
	if !start.After(now) {
		sl.ReportError(req.StartDateTime, "startDateTime", "StartDateTime", "future", "")
	}
	if !end.After(now) {
		sl.ReportError(req.EndDateTime, "endDateTime", "EndDateTime", "future", "")
	}
}

// FormatValidationError flattens validator errors into "field: reason" pairs.
func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), describe(fe)))
	}
	return strings.Join(parts, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_for_type":
		return fmt.Sprintf("is required for %s jios", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "jiotype":
		return "must be one of buyer, seller, other"
	case "telegram":
		return "must be a Telegram username (5-32 letters, digits or underscores)"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "same_day":
		return "must fall on the same day as startDateTime"
	case "before_end":
		return "must be before endDateTime"
	case "future":
		return "must be in the future"
	}
	return "failed " + fe.Tag()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
