// Package errors provides the error taxonomy shared by stream builders and
// engines.
//
// Every failure raised by the library is a *StreamError carrying a
// machine-readable ErrorCode. Errors compare by code, so callers match a
// category with the standard library:
//
//	if errors.Is(err, rserrors.ErrIllegalShape) {
//	    // the builder chain is structurally wrong
//	}
//
// Errors returned by user-supplied operator functions are never wrapped;
// they reach the subscriber unchanged.
package errors
