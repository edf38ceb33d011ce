// Package payload assembles the wire payload for one observed
// request/response pair.
//
// The Builder is pure: it combines what the adapter extracted with the
// cached environment facts and the configured identity, masking headers and
// bodies on the way. It performs no network access. The only failure mode is
// an adapter breaking the extraction contract (missing method, URL, or
// status code), which is reported as ErrIncompleteExtraction and handled by
// dropping the observation, never by disturbing the host request.
package payload
