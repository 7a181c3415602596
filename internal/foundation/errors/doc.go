// Package errors provides the classified error primitives used across docpost.
//
// Every failure that leaves a pipeline boundary is a ClassifiedError carrying a
// category (parse, transform, format, index, ...), a severity and structured
// context such as the page path or transform name. The CLI adapter maps
// categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryTransform, "transform failed").
//		WithContext("page", page.OutputPath).
//		WithContext("transform", t.Name()).
//		Build()
package errors
