package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"marketplace-service/internal/apperr"
)

const noFileMsg = "Either an image or a document must be provided."

// text is a required-looking string that must hold at least one non-space rune.
func text(maxLen int) map[string]interface{} {
	t := map[string]interface{}{"type": "string", "minLength": 1, "pattern": `\S`}
	if maxLen > 0 {
		t["maxLength"] = maxLen
	}
	return t
}

// fileURL points at an uploaded file or an external page.
var fileURL = map[string]interface{}{"type": "string", "format": "uri", "maxLength": 2048}

func object(required []string, props map[string]interface{}) gojsonschema.JSONLoader {
	return gojsonschema.NewGoLoader(map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": props,
	})
}

var (
	paypalSchema = object([]string{"email"}, map[string]interface{}{
		"email": map[string]interface{}{"type": "string", "format": "email", "maxLength": 254},
	})

	portfolioSchema = object([]string{"title", "description"}, map[string]interface{}{
		"title":       text(255),
		"description": text(0),
		"image":       fileURL,
		"document":    fileURL,
		"link":        fileURL,
	})

	educationSchema = object([]string{"graduated_from", "academic_major", "education_levels"}, map[string]interface{}{
		"graduated_from": text(255),
		"academic_major": text(255),
		"certificate":    fileURL,
		"education_levels": map[string]interface{}{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]interface{}{"type": "integer", "minimum": 1},
		},
	})
)

func check(schema gojsonschema.JSONLoader, doc interface{}) (map[string]string, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	return collect(result), nil
}

func asError(fields map[string]string) error {
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// PayPal checks a saved PayPal account payload.
func PayPal(doc interface{}) error {
	fields, err := check(paypalSchema, doc)
	if err != nil {
		return err
	}
	return asError(fields)
}

// Portfolio checks a portfolio item payload. hasFile reports whether an image
// or a document was supplied.
func Portfolio(doc interface{}, hasFile bool) error {
	fields, err := check(portfolioSchema, doc)
	if err != nil {
		return err
	}
	if !hasFile {
		fields["non_field_errors"] = noFileMsg
	}
	return asError(fields)
}

// Education checks an education entry payload; level ids are resolved by the caller.
func Education(doc interface{}) error {
	fields, err := check(educationSchema, doc)
	if err != nil {
		return err
	}
	return asError(fields)
}
