// Package build drives one site build: render the markdown sources, run the
// transform chain over every page in parallel, write the final pages and hand
// the results to the search index builder.
//
// All execution paths (build command, watch session, tests) route through
// Driver. Per-process state that must outlive a single build, such as the
// timing accumulator and the index builder's build-once gate, lives on
// Context.
package build
