// Package middleware contains HTTP middleware for the Fiber application.
//
//   - auth: API key validation, with public path prefixes such as /swagger.
//   - rayid: assigns every request a ray id, stored on the context for
//     logger.WithRayID and echoed in the X-Ray-ID response header.
package middleware
