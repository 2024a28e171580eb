package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrConfig = fmt.Errorf("invalid configuration")

	// Pipeline errors
	ErrTransport   = fmt.Errorf("transport error")
	ErrParse       = fmt.Errorf("malformed payload")
	ErrMetadata    = fmt.Errorf("metadata lookup failed")
	ErrComputation = fmt.Errorf("computation error")

	// Cache errors
	ErrCacheMiss = fmt.Errorf("cache entry not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
