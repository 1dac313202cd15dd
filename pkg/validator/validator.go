package validator

import (
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// ValidateReactionValue checks an emoji token. Values are short opaque
// tokens; the client editor controls the actual emoji set.
func ValidateReactionValue(value string) ValidationErrors {
	errs := make(ValidationErrors)

	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add("value", "Reaction value is required")
	} else if utf8.RuneCountInString(value) > 32 {
		errs.Add("value", "Reaction value is too long")
	}

	return errs
}

func ValidateUploadFilename(filename string) ValidationErrors {
	errs := make(ValidationErrors)

	filename = strings.TrimSpace(filename)
	if filename == "" {
		errs.Add("filename", "Filename is required")
	} else if len(filename) > 255 {
		errs.Add("filename", "Filename is too long")
	} else if strings.ContainsAny(filename, "/\\") {
		errs.Add("filename", "Filename cannot contain path separators")
	}

	return errs
}
