// Package modelstate holds the per-request error set produced by binding.
//
// A Dictionary maps composite field names (`child.name`, `items[0]`) to the
// errors recorded against them and to the raw value that was attempted. It is
// created per request and never shared between requests.
//
// ValidationError is a url.Values-shaped view of the dictionary suitable for
// returning from an HTTP handler or re-rendering a form:
//
//	state, err := mb.BindRequest(r, &form)
//	if err != nil {
//		return err
//	}
//	if !state.IsValid() {
//		return state.ValidationError()
//	}
package modelstate
