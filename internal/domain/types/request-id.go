package types

// RequestIDHeader carries the request id between services.
const RequestIDHeader = "X-Request-ID"
