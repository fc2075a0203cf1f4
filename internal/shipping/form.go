// Package shipping is the shipping address form: an hx component whose
// actions drive the city/ward selector and the submit flow.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/pthm/shipform/hx"
	"github.com/pthm/shipform/internal/address"
	"github.com/pthm/shipform/internal/selection"
	"github.com/pthm/shipform/internal/session"
)

// Banner messages for submission outcomes.
const (
	MsgSubmitFailed = "Could not submit the address. Please try again."
	MsgExpired      = "This form has expired. Please reload the page."
)

// Fragments a render can be narrowed to.
const (
	fragmentForm = ""
	fragmentWard = "ward"
)

// FormProps are the form's props. Only FormID travels to the client; the
// rest is rebuilt by Hydrate or set by actions.
type FormProps struct {
	FormID string `msgpack:"id"`

	State    selection.State `msgpack:"-"`
	Values   address.Values  `msgpack:"-"`
	Issues   address.Issues  `msgpack:"-"`
	Fragment string          `msgpack:"-"`

	ctrl *selection.Controller
}

// Form is the shipping address form component.
type Form struct {
	*hx.Component[FormProps]

	sessions  *session.Store
	submitter address.Submitter
	log       *zap.Logger
}

// NewForm creates the form. Each rendered page owns one session in sessions.
func NewForm(sessions *session.Store, submitter address.Submitter, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Form{
		Component: hx.New[FormProps]("shipping"),
		sessions:  sessions,
		submitter: submitter,
		log:       log,
	}
	f.Bind(f)

	f.Action("region", f.handleRegion)
	f.Action("ward", f.handleWard)
	f.Action("submit", f.handleSubmit)
	return f
}

// Hydrate attaches the form's controller and makes sure the city list has
// been requested.
func (f *Form) Hydrate(ctx context.Context, p *FormProps) error {
	ctrl, err := f.sessions.Get(p.FormID)
	if err != nil {
		return fmt.Errorf("form %q: %w", p.FormID, err)
	}
	// Failures are already recorded in the state's banner message.
	_ = ctrl.Load(ctx)

	p.ctrl = ctrl
	p.State = ctrl.Snapshot()
	p.Values.RegionCode = p.State.PrimaryCode
	p.Values.SubRegionCode = p.State.SecondaryCode
	return nil
}

// handleRegion applies a city change and answers with the ward field. A
// response for a change that has since been superseded is dropped with 204.
func (f *Form) handleRegion(ctx context.Context, p FormProps, r *http.Request) hx.Result[FormProps] {
	if err := r.ParseForm(); err != nil {
		return hx.Err(p, fmt.Errorf("parse form: %w", err))
	}
	code := r.PostForm.Get(address.FieldCity)

	applied, err := p.ctrl.ChangePrimary(ctx, code)
	if !applied {
		return hx.NoContent[FormProps]()
	}

	p.State = p.ctrl.Snapshot()
	p.Values.RegionCode = p.State.PrimaryCode
	p.Values.SubRegionCode = ""
	p.Fragment = fragmentWard

	res := hx.OK(p)
	if err != nil {
		res = res.Flash(hx.FlashError, selection.MsgSecondaryUnavailable)
	}
	return res
}

// handleWard records the chosen ward. Nothing is swapped unless the ward is
// not one of the current options.
func (f *Form) handleWard(ctx context.Context, p FormProps, r *http.Request) hx.Result[FormProps] {
	if err := r.ParseForm(); err != nil {
		return hx.Err(p, fmt.Errorf("parse form: %w", err))
	}
	code := r.PostForm.Get(address.FieldWard)

	if err := p.ctrl.SelectSecondary(code); err != nil {
		if !errors.Is(err, selection.ErrUnknownOption) {
			return hx.Err(p, err)
		}
		f.log.Debug("ward not among current options", zap.String("ward", code))
		p.State = p.ctrl.Snapshot()
		p.Values.SubRegionCode = ""
		p.Issues = address.Issues{{Field: address.FieldWard, Message: address.MsgWardRequired}}
		p.Fragment = fragmentWard
		return hx.OK(p)
	}
	return hx.NoContent[FormProps]()
}

// handleSubmit validates the form, resolves the selected names and hands the
// result to the submitter. Invalid input re-renders the form with field
// errors and submits nothing.
func (f *Form) handleSubmit(ctx context.Context, p FormProps, r *http.Request) hx.Result[FormProps] {
	if err := r.ParseForm(); err != nil {
		return hx.Err(p, fmt.Errorf("parse form: %w", err))
	}
	p.Values = address.Clean(address.FromForm(r.PostForm))

	if err := address.Validate(p.Values); err != nil {
		var issues address.Issues
		if errors.As(err, &issues) {
			p.Issues = issues
			return hx.OK(p)
		}
		return hx.Err(p, fmt.Errorf("validate address: %w", err))
	}

	city, ward := p.ctrl.Resolve(p.Values.RegionCode, p.Values.SubRegionCode)
	var issues address.Issues
	if city == "" {
		issues = append(issues, address.Issue{Field: address.FieldCity, Message: address.MsgCityRequired})
	}
	if ward == "" {
		issues = append(issues, address.Issue{Field: address.FieldWard, Message: address.MsgWardRequired})
	}
	if len(issues) > 0 {
		p.Issues = issues
		return hx.OK(p)
	}
	_ = p.ctrl.SelectSecondary(p.Values.SubRegionCode)
	p.State = p.ctrl.Snapshot()

	result := address.NewResult(p.Values, city, ward)
	if err := f.submitter.Submit(ctx, result); err != nil {
		f.log.Error("address submission failed", zap.String("form_id", p.FormID), zap.Error(err))
		return hx.OK(p).Flash(hx.FlashError, MsgSubmitFailed)
	}
	return hx.OK(p).Flash(hx.FlashSuccess, result.JSON()).Trigger("address-submitted")
}

// Render renders the whole form, or only the ward field after a city change.
func (f *Form) Render(ctx context.Context, p FormProps) templ.Component {
	if p.Fragment == fragmentWard {
		return f.wardField(p)
	}
	return f.formView(p)
}
