package shipping

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/shipform/hx"
	"github.com/pthm/shipform/internal/address"
	"github.com/pthm/shipform/internal/region"
)

// Element ids the actions target.
const (
	FormElementID    = "shipping-form"
	WardFieldID      = "ward-field"
	wardIndicatorID  = "ward-indicator"
	submitIndicator  = "submit-indicator"
	cityPlaceholder  = "-- Select City --"
	wardPlaceholder  = "-- Select Ward --"
	wardLoadingLabel = "Loading wards..."
)

type builder struct {
	strings.Builder
}

func (b *builder) open(tag string, attrs templ.Attributes) {
	b.WriteString("<" + tag + hx.RenderAttrs(attrs) + ">")
}

func (b *builder) close(tag string) {
	b.WriteString("</" + tag + ">")
}

func (b *builder) text(s string) {
	b.WriteString(templ.EscapeString(s))
}

// flag renders an ARIA boolean: "true" or absent.
func flag(on bool) any {
	if on {
		return "true"
	}
	return nil
}

func static(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
}

func (f *Form) formView(p FormProps) templ.Component {
	var b builder
	wire := f.Wire("submit", p)

	b.open("form", hx.Merge(wire, templ.Attributes{
		"id":              FormElementID,
		"class":           "shipping-form",
		"hx-target":       "this",
		"hx-swap":         hx.SwapOuter,
		"hx-disabled-elt": "find button[type=submit]",
		"hx-indicator":    "#" + submitIndicator,
		"novalidate":      true,
	}))
	b.open("h2", nil)
	b.text("Shipping Form")
	b.close("h2")

	b.open("div", templ.Attributes{"class": "row"})
	writeInput(&b, address.FieldHouseNumber, "House Number", p.Values.HouseNumber, p.Issues.For(address.FieldHouseNumber))
	writeInput(&b, address.FieldStreet, "Street", p.Values.Street, p.Issues.For(address.FieldStreet))
	b.close("div")

	f.writeCityField(&b, p)
	f.writeWardField(&b, p)

	b.open("div", templ.Attributes{"class": "actions"})
	b.open("button", templ.Attributes{"type": "submit"})
	b.text("CONFIRM")
	b.close("button")
	b.open("span", templ.Attributes{"id": submitIndicator, "class": "htmx-indicator"})
	b.text("Submitting...")
	b.close("span")
	b.close("div")

	b.close("form")

	if p.Fragment == fragmentForm && p.State.Err != "" {
		b.WriteString(hx.RenderFlashesOOB([]hx.Flash{{Level: hx.FlashError, Message: p.State.Err}}))
	}
	return static(b.String())
}

func (f *Form) wardField(p FormProps) templ.Component {
	var b builder
	f.writeWardField(&b, p)
	return static(b.String())
}

func writeInput(b *builder, name, label, value, issue string) {
	b.open("div", templ.Attributes{"class": "field"})
	writeLabel(b, name, label)
	b.open("input", templ.Attributes{
		"type":         "text",
		"id":           name,
		"name":         name,
		"value":        value,
		"aria-invalid": flag(issue != ""),
	})
	writeIssue(b, issue)
	b.close("div")
}

func (f *Form) writeCityField(b *builder, p FormProps) {
	issue := p.Issues.For(address.FieldCity)

	b.open("div", templ.Attributes{"class": "field", "id": "city-field"})
	writeLabel(b, address.FieldCity, "City / Province")
	b.open("select", hx.Merge(f.Wire("region", p), templ.Attributes{
		"id":              address.FieldCity,
		"name":            address.FieldCity,
		"hx-trigger":      "change",
		"hx-target":       "#" + WardFieldID,
		"hx-swap":         hx.SwapOuter,
		"hx-sync":         "this:replace",
		"hx-indicator":    "#" + wardIndicatorID,
		"hx-disabled-elt": "#" + address.FieldWard,
		"aria-invalid":    flag(issue != ""),
	}))
	writeOptions(b, cityPlaceholder, p.State.PrimaryOptions, p.Values.RegionCode)
	b.close("select")
	writeIssue(b, issue)
	b.close("div")
}

func (f *Form) writeWardField(b *builder, p FormProps) {
	issue := p.Issues.For(address.FieldWard)

	b.open("div", templ.Attributes{"class": "field", "id": WardFieldID})
	writeLabel(b, address.FieldWard, "Ward")
	b.open("select", hx.Merge(f.Wire("ward", p), templ.Attributes{
		"id":           address.FieldWard,
		"name":         address.FieldWard,
		"hx-trigger":   "change",
		"hx-target":    "#" + WardFieldID,
		"hx-swap":      hx.SwapOuter,
		"disabled":     p.State.SecondaryDisabled(),
		"aria-busy":    flag(p.State.SecondaryLoading),
		"aria-invalid": flag(issue != ""),
	}))
	writeOptions(b, wardPlaceholder, p.State.SecondaryOptions, p.Values.SubRegionCode)
	b.close("select")
	b.open("span", templ.Attributes{"id": wardIndicatorID, "class": "htmx-indicator"})
	b.text(wardLoadingLabel)
	b.close("span")
	writeIssue(b, issue)
	b.close("div")
}

func writeLabel(b *builder, forID, text string) {
	b.open("label", templ.Attributes{"for": forID})
	b.text(text)
	b.close("label")
}

func writeOptions(b *builder, placeholder string, records []region.Record, selected string) {
	b.open("option", templ.Attributes{"value": ""})
	b.text(placeholder)
	b.close("option")
	for _, rec := range records {
		b.open("option", templ.Attributes{"value": rec.Code, "selected": rec.Code == selected})
		b.text(rec.Name)
		b.close("option")
	}
}

func writeIssue(b *builder, issue string) {
	if issue == "" {
		return
	}
	b.open("p", templ.Attributes{"class": "field-error", "role": "alert"})
	b.text("⚠ " + issue)
	b.close("p")
}
