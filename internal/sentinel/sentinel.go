package sentinel

var _ error = Error("")

// Error is an immutable error type backed by a string constant.
//
// errors.Is compares comparable targets with ==, so a const Error matches
// itself through any number of fmt.Errorf("%w") or errors.Join layers.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
