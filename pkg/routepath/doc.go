// Package routepath normalizes URL paths and route patterns.
//
// Request paths from the development server are canonicalized before they
// reach a route matcher, and route patterns are joined into absolute page
// paths with the helpers in this package.
package routepath
