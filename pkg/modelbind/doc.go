// Package modelbind binds HTTP request values to Go structs by wire name.
//
// A field's wire name is its `json` tag (configurable), so the struct used to
// decode a JSON API request also binds the equivalent form or query string:
//
//	type DemoForm struct {
//		TextBox      string `json:"foo"`
//		DropdownList int    `json:"bar"`
//		CheckBoxList []int  `json:"baz"`
//	}
//
// binds `foo=hello&bar=3&baz=1&baz=2`. Values submitted under the Go field
// name (`TextBox=hello`) are ignored.
//
// # Binders
//
// A Binder binds one model described by a Context and returns a Result: the
// bound value, a tri-state Outcome and the errors recorded while producing
// it. Binders never share mutable state; a parent merges the child's errors
// into its own and writes the value onto its instance.
//
//   - SimpleBinder converts a single value (strings, numbers, bools,
//     time.Time, time.Duration, uuid.UUID, encoding.TextUnmarshaler).
//   - CollectionBinder binds slices and arrays from repeated values or
//     indexed names (`items[0].name`).
//   - FileBinder binds uploaded files.
//   - BodyBinder consumes the whole request body (`bind:"body"`).
//   - CompositeBinder binds structs property by property. Nested structs are
//     only allocated when the request holds a value for one of their fields.
//   - AbstractBinder binds interface-typed fields through a registered factory.
//
// A Factory resolves binders through an ordered list of Providers and caches
// them per type. Custom providers registered with WithProvider run first.
//
// # Errors
//
// Missing required values, conversion failures, setter errors and validation
// findings are data: they are recorded in the returned modelstate.Dictionary
// under composite field names (`child.name`, `items[1]`) and binding carries
// on. Each field keeps the first error recorded for it. Bind only returns an
// error when binding cannot run at all.
//
// # Validation
//
// After its properties are bound a struct is validated: `validate` tag rules,
// then `vd` go-tagexpr expressions, and, only when every property passed,
// object-level validators (the Validatable interface and ObjectValidator
// functions).
//
// # Usage
//
//	mb := modelbind.New(modelbind.WithLogger(log))
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//		var form DemoForm
//		state, err := mb.BindRequest(r, &form)
//		if err != nil {
//			http.Error(w, err.Error(), http.StatusBadRequest)
//			return
//		}
//		if !state.IsValid() {
//			// re-render the form with state.Errors("foo") ...
//		}
//	}
//
// Query, Form, Route and Request return func(*http.Request, any) error
// binders for handler.WithBinders; they report modelstate.ValidationError
// when any field fails.
package modelbind
