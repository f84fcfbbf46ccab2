package moodle

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Response schemas only pin down the fields this client reads; everything
// else the web service sends is allowed through.
const (
	coursesSchemaJSON = `{
  "type": "object",
  "required": ["courses"],
  "properties": {
    "courses": {
      "type": "array",
      "items": {"type": "object", "required": ["id"], "properties": {"id": {"type": "integer"}}}
    }
  }
}`

	feedbacksSchemaJSON = `{
  "type": "object",
  "required": ["feedbacks"],
  "properties": {
    "feedbacks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "course"],
        "properties": {"id": {"type": "integer"}, "course": {"type": "integer"}}
      }
    }
  }
}`

	analysisSchemaJSON = `{
  "type": "object",
  "required": ["attempts", "totalattempts", "anonattempts", "totalanonattempts"],
  "definitions": {
    "attempt": {
      "type": "object",
      "required": ["responses"],
      "properties": {
        "responses": {
          "type": "array",
          "items": {"type": "object", "required": ["name", "rawval"], "properties": {
            "name": {"type": "string"},
            "rawval": {"type": ["string", "number", "null"]}
          }}
        }
      }
    }
  },
  "properties": {
    "attempts": {"type": "array", "items": {"$ref": "#/definitions/attempt"}},
    "anonattempts": {"type": "array", "items": {"$ref": "#/definitions/attempt"}},
    "totalattempts": {"type": "integer"},
    "totalanonattempts": {"type": "integer"}
  }
}`
)

var (
	coursesSchema   = mustSchema(coursesSchemaJSON)
	feedbacksSchema = mustSchema(feedbacksSchemaJSON)
	analysisSchema  = mustSchema(analysisSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("moodle: invalid response schema: %v", err))
	}
	return s
}

// validate checks body against schema. A missing required key becomes a
// MissingFieldError, any other mismatch a SchemaError.
func validate(function string, schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("moodle %s: decode response: %w", function, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		if re.Type() == "required" {
			return &MissingFieldError{Function: function, Field: requiredField(re)}
		}
		problems = append(problems, re.String())
	}
	return &SchemaError{Function: function, Problems: problems}
}

func requiredField(re gojsonschema.ResultError) string {
	property, _ := re.Details()["property"].(string)
	if parent := re.Field(); parent != "" && parent != "(root)" {
		return parent + "." + property
	}
	return property
}
