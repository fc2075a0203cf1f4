package region

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformed is returned when a reference document cannot be projected to
// records.
var ErrMalformed = errors.New("region: malformed document")

// Parse projects a reference document to records in document order.
//
// Object keys are ignored; only the values matter. Numeric codes are kept in
// their literal form so "01" and 1 stay distinguishable from each other.
func Parse(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() && !root.IsArray() {
		return nil, fmt.Errorf("%w: top level is %s", ErrMalformed, root.Type)
	}

	var (
		records = make([]Record, 0, 64)
		idx     int
		perr    error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		label := key.String()
		if !key.Exists() {
			label = strconv.Itoa(idx)
		}
		idx++

		if !value.IsObject() {
			perr = fmt.Errorf("%w: entry %q is not an object", ErrMalformed, label)
			return false
		}
		code := scalar(value.Get("code"))
		if code == "" {
			perr = fmt.Errorf("%w: entry %q has no code", ErrMalformed, label)
			return false
		}
		records = append(records, Record{
			Code:       code,
			Name:       norm.NFC.String(strings.TrimSpace(value.Get("name").String())),
			ParentCode: scalar(value.Get("parent_code")),
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return records, nil
}

func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}
