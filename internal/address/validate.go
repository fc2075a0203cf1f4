package address

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// Validation messages.
const (
	MsgHouseNumberRequired = "House number is required"
	MsgStreetRequired      = "Street is required"
	MsgStreetTooShort      = "Street must be at least 2 characters"
	MsgCityRequired        = "Please select a city"
	MsgWardRequired        = "Please select a ward"
)

const schemaURL = "https://schemas.shipform.dev/address.json"

const schemaDoc = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"houseNumber": {"type": "string", "minLength": 1},
		"street": {"type": "string", "minLength": 2},
		"city": {"type": "string", "minLength": 1},
		"ward": {"type": "string", "minLength": 1}
	},
	"required": ["houseNumber", "street", "city", "ward"]
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaDoc))
	if err != nil {
		return nil, fmt.Errorf("decode address schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add address schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile address schema: %w", err)
	}
	return sch, nil
})

// Issue is a field-scoped validation failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Issues is the set of validation failures of one submission, at most one
// per field, in field display order.
type Issues []Issue

func (is Issues) Error() string {
	parts := make([]string, 0, len(is))
	for _, i := range is {
		parts = append(parts, i.Field+": "+i.Message)
	}
	return "address: invalid " + strings.Join(parts, "; ")
}

// For returns the message attached to field, or "".
func (is Issues) For(field string) string {
	for _, i := range is {
		if i.Field == field {
			return i.Message
		}
	}
	return ""
}

// Validate checks v against the address rules. It returns nil, an Issues
// value, or an error when the rules themselves cannot be loaded.
func Validate(v Values) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	instance := map[string]any{}
	for _, field := range Fields {
		instance[field] = v.Get(field)
	}

	err = sch.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate address: %w", err)
	}

	found := map[string]string{}
	collectIssues(ve, found)

	issues := make(Issues, 0, len(found))
	for _, field := range Fields {
		if msg, ok := found[field]; ok {
			issues = append(issues, Issue{Field: field, Message: msg})
		}
	}
	if len(issues) == 0 {
		return fmt.Errorf("validate address: %w", err)
	}
	return issues
}

func collectIssues(ve *jsonschema.ValidationError, found map[string]string) {
	field := ""
	if len(ve.InstanceLocation) > 0 {
		field = ve.InstanceLocation[0]
	}

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			addIssue(found, missing, requiredMessage(missing))
		}
	case *kind.MinLength:
		if k.Got == 0 {
			addIssue(found, field, requiredMessage(field))
		} else if field == FieldStreet {
			addIssue(found, field, MsgStreetTooShort)
		} else {
			addIssue(found, field, requiredMessage(field))
		}
	}

	for _, cause := range ve.Causes {
		collectIssues(cause, found)
	}
}

func addIssue(found map[string]string, field, msg string) {
	if field == "" || msg == "" {
		return
	}
	if _, exists := found[field]; !exists {
		found[field] = msg
	}
}

func requiredMessage(field string) string {
	switch field {
	case FieldHouseNumber:
		return MsgHouseNumberRequired
	case FieldStreet:
		return MsgStreetRequired
	case FieldCity:
		return MsgCityRequired
	case FieldWard:
		return MsgWardRequired
	default:
		return ""
	}
}
