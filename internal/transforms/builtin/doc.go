// Package builtin contains the reference transforms of the page chain.
//
// Each transform keeps its configuration on the value and reads the page
// context from transforms.Options. Queries are limited to the configured
// content scope.
package builtin
