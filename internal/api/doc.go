// Package api wraps outbound HTTP calls to the remote control service.
// It injects the bearer credential, tags every request with an ID,
// normalizes failures into the AuthError/RequestError/NetworkError
// taxonomy, and decodes JSON responses into workspace types. It carries
// no retry policy; a failed call surfaces immediately to its caller.
package api
