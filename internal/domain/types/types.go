// Package types contains the read and request shapes shared by the service
// and the HTTP API.
package types

// CreateMatchInput describes a new scheduled match.
type CreateMatchInput struct {
	Teams [2]string `json:"teams"`
	Overs int       `json:"overs"`
}
