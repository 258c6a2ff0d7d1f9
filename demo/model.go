package demo

import (
	"slices"

	"github.com/dmitrymomot/formbind/pkg/modelname"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// Option is a selectable value of the demo form.
type Option struct {
	Value int
	Label string
}

// Options lists the values offered by the dropdown and the checkbox list.
var Options = []Option{
	{Value: 1, Label: "One"},
	{Value: 2, Label: "Two"},
	{Value: 3, Label: "Three"},
}

// DemoFormModel is bound by wire name: the form posts foo, bar and baz.
type DemoFormModel struct {
	TextBox      string `json:"foo"`
	DropdownList int    `json:"bar"`
	CheckBoxList []int  `json:"baz"`
}

// Validate rejects values that are not listed in Options. A zero
// DropdownList means nothing was selected.
func (m DemoFormModel) Validate() error {
	if ve := m.fieldErrors(""); !ve.IsEmpty() {
		return ve
	}
	return nil
}

func (m DemoFormModel) fieldErrors(prefix string) modelstate.ValidationError {
	ve := modelstate.NewValidationError()
	if m.DropdownList != 0 && !isOption(m.DropdownList) {
		ve.Add(modelname.Property(prefix, "bar"), "Select one of the listed options.")
	}
	for _, v := range m.CheckBoxList {
		if !isOption(v) {
			ve.Add(modelname.Property(prefix, "baz"), "Select only listed options.")
			break
		}
	}
	return ve
}

func isOption(v int) bool {
	return slices.ContainsFunc(Options, func(o Option) bool { return o.Value == v })
}

// APIRequest is the JSON endpoint payload: the form travels in the body,
// Trace is read from the query string.
type APIRequest struct {
	Form  DemoFormModel `bind:"body,required"`
	Trace bool          `json:"trace"`
}

// Validate applies the form rules to the decoded body. Body values are not
// validated property by property, so errors are keyed under Form here.
func (r APIRequest) Validate() error {
	if ve := r.Form.fieldErrors("Form"); !ve.IsEmpty() {
		return ve
	}
	return nil
}

// FormRequest carries a bound form and the field errors found while binding it.
type FormRequest struct {
	Model  DemoFormModel
	Errors modelstate.ValidationError
}
