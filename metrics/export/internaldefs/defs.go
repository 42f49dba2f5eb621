package internaldefs

import (
	goVault "github.com/MrEthical07/goVault"
)

// CounterDef defines a public type used by goVault APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goVault.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goVault APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goVault.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: goVault.MetricLoginSuccess, Name: "govault_login_success_total", Help: "Successful login attempts."},
	{ID: goVault.MetricLoginFailure, Name: "govault_login_failure_total", Help: "Failed login attempts."},
	{ID: goVault.MetricLoginBlocked, Name: "govault_login_blocked_total", Help: "Login attempts rejected while the account was locked."},
	{ID: goVault.MetricAccountLocked, Name: "govault_account_locked_total", Help: "Accounts locked after exceeding the failed-attempt threshold."},
	{ID: goVault.MetricRegisterSuccess, Name: "govault_register_success_total", Help: "Successful registrations."},
	{ID: goVault.MetricRegisterDuplicate, Name: "govault_register_duplicate_total", Help: "Registrations rejected for a taken username."},
	{ID: goVault.MetricRegisterInvalid, Name: "govault_register_invalid_total", Help: "Registrations rejected by input validation."},
	{ID: goVault.MetricLogout, Name: "govault_logout_total", Help: "Logout operations."},
	{ID: goVault.MetricSessionValidated, Name: "govault_session_validated_total", Help: "Successful session validations."},
	{ID: goVault.MetricSessionExpired, Name: "govault_session_expired_total", Help: "Session validations that found an expired token."},
	{ID: goVault.MetricPasswordChanged, Name: "govault_password_changed_total", Help: "Successful password changes."},
	{ID: goVault.MetricAccountDeactivated, Name: "govault_account_deactivated_total", Help: "Account deactivation operations."},
	{ID: goVault.MetricAccountActivated, Name: "govault_account_activated_total", Help: "Account activation operations."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: goVault.MetricValidateLatency, Name: "govault_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
