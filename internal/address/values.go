// Package address models the shipping address form: its values, the rules
// they must satisfy, and the record produced on submission.
package address

import (
	"encoding/json"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Form field names.
const (
	FieldHouseNumber = "houseNumber"
	FieldStreet      = "street"
	FieldCity        = "city"
	FieldWard        = "ward"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldHouseNumber, FieldStreet, FieldCity, FieldWard}

// Values are the raw form values. RegionCode and SubRegionCode hold the
// selected city and ward codes.
type Values struct {
	HouseNumber   string
	Street        string
	RegionCode    string
	SubRegionCode string
}

// FromForm reads Values from submitted form fields.
func FromForm(form url.Values) Values {
	return Values{
		HouseNumber:   form.Get(FieldHouseNumber),
		Street:        form.Get(FieldStreet),
		RegionCode:    form.Get(FieldCity),
		SubRegionCode: form.Get(FieldWard),
	}
}

// Get returns the value of the named field.
func (v Values) Get(field string) string {
	switch field {
	case FieldHouseNumber:
		return v.HouseNumber
	case FieldStreet:
		return v.Street
	case FieldCity:
		return v.RegionCode
	case FieldWard:
		return v.SubRegionCode
	default:
		return ""
	}
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func stripMarkup(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	// StrictPolicy escapes what it keeps; rendering escapes again later.
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(raw)))
}

// Clean trims every field and strips markup from the free-text fields.
func Clean(v Values) Values {
	return Values{
		HouseNumber:   stripMarkup(v.HouseNumber),
		Street:        stripMarkup(v.Street),
		RegionCode:    strings.TrimSpace(v.RegionCode),
		SubRegionCode: strings.TrimSpace(v.SubRegionCode),
	}
}

// Result is the record produced by a successful submission. City and Ward
// are display names, not codes.
type Result struct {
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	City        string `json:"city"`
	Ward        string `json:"ward"`
}

// NewResult assembles a Result from validated values and resolved names.
func NewResult(v Values, city, ward string) Result {
	return Result{
		HouseNumber: v.HouseNumber,
		Street:      v.Street,
		City:        city,
		Ward:        ward,
	}
}

// JSON returns the result as indented JSON.
func (r Result) JSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
