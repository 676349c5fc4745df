// Package protocol implements the length-framed binary wire format spoken
// between k-shortest-path clients and the server.
//
// All integers are unsigned 32-bit big-endian.
//
// Request:
//
//	n | m | k | s | t | (a, b, w) * m
//
// Response:
//
//	byteLength | vertex * (byteLength / 4)
//
// The response vertices are every ranked path concatenated in rank order
// with no delimiters; a path ends at the first vertex equal to t. An empty
// ranking is a response with byteLength = 0.
//
// One connection carries exactly one request and at most one response.
// A request that fails validation is never answered.
package protocol
