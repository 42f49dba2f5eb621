package export

import "time"

// Registration defines a public type used by goVault APIs.
//
// Registration instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Registration struct {
	UserID       int64
	Username     string
	Email        string
	Role         string
	RegisteredAt time.Time
}

// Exporter receives a notification for every successful registration.
// Implementations must tolerate concurrent calls; a returned error is logged
// by the caller and never fails the registration itself.
type Exporter interface {
	NotifyRegistration(reg Registration) error
}

// NoOpExporter defines a public type used by goVault APIs.
//
// NoOpExporter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpExporter struct{}

// NotifyRegistration describes the notifyregistration operation and its observable behavior.
func (NoOpExporter) NotifyRegistration(Registration) error { return nil }
