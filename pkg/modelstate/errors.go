package modelstate

import "errors"

// ErrTooManyErrors is recorded once the dictionary reaches its error limit.
var ErrTooManyErrors = errors.New("the maximum number of allowed model errors has been reached")
