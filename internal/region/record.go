// Package region loads administrative region reference data (provinces and
// their wards) from static JSON documents.
//
// A document is a JSON object keyed arbitrarily (or an array) whose values
// carry code, name and parent_code. Records are returned in document order.
package region

// Record is a single administrative unit. ParentCode is empty for top-level
// units.
type Record struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentCode string `json:"parent_code,omitempty"`
}

// IsTopLevel reports whether the record has no parent.
func (r Record) IsTopLevel() bool {
	return r.ParentCode == ""
}

// FilterByParent returns the records whose ParentCode equals parent, keeping
// their relative order. The result is never nil.
func FilterByParent(records []Record, parent string) []Record {
	out := make([]Record, 0)
	if parent == "" {
		return out
	}
	for _, r := range records {
		if r.ParentCode == parent {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the record with the given code.
func Find(records []Record, code string) (Record, bool) {
	if code == "" {
		return Record{}, false
	}
	for _, r := range records {
		if r.Code == code {
			return r, true
		}
	}
	return Record{}, false
}

// NameOf returns the display name for code, or "" when it is unknown.
func NameOf(records []Record, code string) string {
	r, ok := Find(records, code)
	if !ok {
		return ""
	}
	return r.Name
}

// Clone returns a copy of records that shares no backing array.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
