package main

import (
	"errors"
)

var (
	ERR_BAD_INPUT            error = errors.New("Can't open input")
	ERR_BAD_OUTPUT           error = errors.New("Can't open output")
	ERR_INVALID_CONFIG       error = errors.New("Invalid config")
	ERR_CANT_CREATE_TRACKER  error = errors.New("Can't create tracker")
	ERR_CANT_CONNECT         error = errors.New("Can't connect to broker")
	ERR_STREAM_ENDED         error = errors.New("Stream ended")
	ERR_CANCELLED_BY_CONTEXT error = errors.New("Cancelled via context")
	ERR_INTERRUPTED_BY_USER  error = errors.New("Interrupted by user")
)
