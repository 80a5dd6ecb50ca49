// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route.
//   - rayid: a unique request id (ray id) stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
package middleware
