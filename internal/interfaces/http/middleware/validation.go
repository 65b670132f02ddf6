package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// enumValidators binds validation tags to the domain enums' IsValid checks
var enumValidators = map[string]func(string) bool{
	"payment_method":     func(s string) bool { return payment.Method(s).IsValid() },
	"payment_status":     func(s string) bool { return payment.Status(s).IsValid() },
	"bill_status":        func(s string) bool { return billing.BillStatus(s).IsValid() },
	"complaint_status":   func(s string) bool { return support.ComplaintStatus(s).IsValid() },
	"complaint_priority": func(s string) bool { return support.ComplaintPriority(s).IsValid() },
}

// SetupValidator configures gin's validator: JSON field names in errors
// and the portal's enum tags.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return RegisterValidators(v)
}

// RegisterValidators installs the portal's tags on v
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	for tag, valid := range enumValidators {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// HandleValidationError writes a 400 response. Field errors are listed;
// anything else (malformed JSON, wrong types) is reported as a bad request.
func HandleValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Invalid request body", GetRequestID(c)))
		return
	}

	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must match the format " + e.Param()
	case "payment_method":
		return "Must be one of: mpesa bank_transfer cash"
	case "payment_status":
		return "Must be one of: pending completed failed"
	case "bill_status":
		return "Must be one of: pending paid overdue"
	case "complaint_status":
		return "Must be one of: open in_progress resolved closed"
	case "complaint_priority":
		return "Must be one of: low medium high urgent"
	default:
		return "Invalid value"
	}
}
