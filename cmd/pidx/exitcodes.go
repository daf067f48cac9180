package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (invalid config, unknown key)
	ExitDataError     = 3 // Data error (malformed input, no valid records)
	ExitUnavailable   = 4 // Embedding provider unreachable
	ExitModelNotFound = 5 // Embedding model not found
	ExitIndexStale    = 6 // Stored embeddings were made by another model, run reembed
)
