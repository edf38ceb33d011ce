// Package schema defines the wire types for the Treblle ingestion API.
//
// A TrebllePayload is produced once per observed request/response pair and
// serialized as the JSON body of a POST to the configured base URL. Field
// names and nesting follow the Treblle payload schema exactly; optional
// fields carry omitempty so absent data is omitted rather than zero-filled.
package schema
