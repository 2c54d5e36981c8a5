// Package secrets resolves secret references against AWS Systems Manager
// Parameter Store.
//
// The store client is built with the SDK's standard retryer capped at a fixed
// number of attempts and an HTTP timeout; the resolver itself performs a single
// logical lookup per call and classifies failures into hellodb.SecretError kinds.
package secrets
