// Package errors provides structured, coded errors for the ssg toolchain.
//
// Every failure the build or dev server can surface to a user has a
// registered code (E100, E300, ...). A coded error carries the page path it
// happened on, the underlying cause, and an optional hint, and can render
// itself for a terminal:
//
//	err := errors.New("E300").WithPath("/docs/intro").Wrap(cause)
//	fmt.Fprint(os.Stderr, err.Format())
//
// # Error Categories
//
//   - config: ssg.json and environment problems (E100-E199)
//   - routes: static path enumeration and lazy routes (E200-E299)
//   - render: page rendering and HTML composition (E300-E499)
//   - io: bundler manifests, templates and output files (E500-E699)
//   - dev: development server requests (E700-E799)
//   - publish: uploading the output directory (E800-E899)
package errors
