// Package metadata describes bindable Go types.
//
// A Model is the precomputed, read-only description of a type: its kind
// (simple, complex, collection, abstract, file) and, for structs, the ordered
// list of bindable properties. Descriptors are built once per type by a
// Provider and shared across requests.
//
// # Aliases
//
// Each property may carry a wire-level alias taken from its serialization
// tag (`json` by default). Request fields are matched against the alias, not
// the Go field name:
//
//	type DemoFormModel struct {
//		TextBox      string `json:"foo"`
//		DropdownList int    `json:"bar"`
//		CheckBoxList []int  `json:"baz"`
//	}
//
// ResolveAlias returns the alias when one is declared and the Go field name
// otherwise. A `json:"-"` tag marks the field as never bindable.
//
// # Binding tags
//
// The `bind` tag accepts a comma separated list of options:
//
//   - required - a missing value is reported as an error
//   - never    - the property is never bound
//   - readonly - the property cannot be assigned; nested objects are still
//     updated in place through the existing instance
//   - body     - the property consumes the whole request body (greedy source)
//
// Validation rules live in the `validate` tag (see pkg/validator) and
// go-tagexpr expressions in the `vd` tag.
package metadata
