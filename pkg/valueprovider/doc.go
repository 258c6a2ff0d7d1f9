// Package valueprovider exposes submitted request values by composite field name.
//
// Binders never parse query strings or bodies themselves. They ask a
// ValueProvider whether anything was submitted under a name (ContainsPrefix)
// and for the raw values stored under an exact name (GetValue). Names follow
// the conventions of package modelname: `parent.child` for nested objects and
// `items[0]` for indexed elements.
//
// Providers are created per request:
//
//	vp, err := valueprovider.Form(r, valueprovider.DefaultMaxMemory)
//	if err != nil {
//		return err
//	}
//	if vp.ContainsPrefix("child") {
//		name := vp.GetValue("child.name").First()
//	}
//
// FromRequest combines route values, form values, query values and the raw
// body into a single Composite in that order of precedence.
package valueprovider
