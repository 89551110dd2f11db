package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"verleih/pkg/logger"
	"verleih/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type RentalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRentalValidator(log *logger.Logger) *RentalValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("rental_status", validateRentalStatus); err != nil {
		log.Fatal("Failed to register 'rental_status' validator", "error", err)
	}

	log.Debug("Rental validator initialized successfully")

	return &RentalValidator{
		validate: v,
		logger:   log,
	}
}

func validateRentalStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(model.RentalStatus)
	if !ok {
		return false
	}
	return status.Valid()
}

// ValidateRequest checks the request on its own: field formats, a start date
// strictly after now, and at most one line per item.
func (v *RentalValidator) ValidateRequest(req *model.RentalRequest, now time.Time) error {
	if err := v.structErrors(req); err != nil {
		return err
	}

	var errs ValidationErrors
	if !req.StartDate.After(now) {
		errs = append(errs, ValidationError{Field: "start_date", Message: "start_date must be in the future"})
	}

	seen := make(map[string]bool, len(req.Items))
	for i, line := range req.Items {
		if seen[line.ItemID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: "item is listed more than once",
			})
		}
		seen[line.ItemID] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateAgainstDepot checks the request against the depot it targets and
// the items found for its lines.
func (v *RentalValidator) ValidateAgainstDepot(req *model.RentalRequest, depot *model.Depot, items []*model.Item) error {
	var errs ValidationErrors

	if !depot.Active {
		errs = append(errs, ValidationError{Field: "depot_id", Message: "depot is not active"})
	}

	byID := make(map[string]*model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for i, line := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		item, ok := byID[line.ItemID]
		switch {
		case !ok:
			errs = append(errs, ValidationError{Field: field + ".item_id", Message: "item does not exist"})
		case item.DepotID != depot.ID:
			errs = append(errs, ValidationError{Field: field + ".item_id", Message: "item belongs to a different depot"})
		case line.Quantity > item.Quantity:
			errs = append(errs, ValidationError{
				Field:   field + ".quantity",
				Message: fmt.Sprintf("quantity must not exceed the %d units the depot owns", item.Quantity),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *RentalValidator) ValidateStateChange(req *model.StateChangeRequest) error {
	return v.structErrors(req)
}

func (v *RentalValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	validationErrors := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), "start_date")
		case "rental_status":
			message = fmt.Sprintf("%s must be one of: pending, approved, declined, revoked, returned", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath drops the top-level struct name, leaving e.g. items[0].quantity.
func fieldPath(err validator.FieldError) string {
	if _, rest, ok := strings.Cut(err.Namespace(), "."); ok {
		return rest
	}
	return err.Field()
}
