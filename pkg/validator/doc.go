// Package validator turns `validate` struct tags into field rules.
//
// A tag is a comma separated list of rule names, some of which take a
// parameter after `=`:
//
//	type Signup struct {
//		Email string   `json:"email" validate:"required,email"`
//		Name  string   `json:"name" validate:"required,min=2,max=64"`
//		Age   int      `json:"age" validate:"omitempty,min=18"`
//		Plan  string   `json:"plan" validate:"oneof=free pro"`
//		Tags  []string `json:"tags" validate:"max=5"`
//	}
//
// Rules adapt to the field kind: min/max/len compare lengths for strings and
// collections and values for numbers. Nil pointers only fail `required`.
//
// Every failing rule yields a ValidationError carrying an English message
// and a translation key with its parameters, so callers can localise the
// message without parsing it. Apply collects failures into ValidationErrors.
//
//	err := validator.ValidateTag("name", form.Name, "required,min=2")
//	for _, e := range validator.ExtractValidationErrors(err) {
//		fmt.Println(e.Field, e.Message, e.TranslationKey)
//	}
package validator
