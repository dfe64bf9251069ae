// Package errors provides the classified error type used across docnav.
//
// A ClassifiedError carries a category (config, content, lint, ...), a
// severity and a retry strategy next to the message and cause. The CLI maps
// categories to exit codes and the serve mode maps them to HTTP status codes.
//
//	err := errors.NewError(errors.CategoryContent, "page not found").
//		WithContext("page", ref).
//		Build()
package errors
