package validation

import (
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/post-downloader/internal/domain"
)

// New returns a validator with the custom rules used by domain types.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resource_url", validateResourceURL)
	return v
}

var validate = New()

// ValidateStartRequest checks a batch request. Post ids must be unique since
// they name the files written to the destination.
func ValidateStartRequest(req *domain.StartBatchRequest) error {
	return validate.Struct(req)
}

func validateResourceURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
