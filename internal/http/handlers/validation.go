package handlers

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// RegisterCustomValidators installs the domain rules on gin's binding
// engine. Call once at router construction.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)

	if !ok {
		return
	}

	_ = v.RegisterValidation("username", validUsername)
	_ = v.RegisterValidation("imageurl", validImageURL)
}

func validUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// validImageURL requires an absolute http(s) URL whose target ends in a
// known image extension, matched case-insensitively.
func validImageURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()

	u, err := url.Parse(raw)

	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	lowered := strings.ToLower(raw)

	for _, ext := range imageExtensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}

	return false
}
