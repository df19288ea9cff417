// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first sample.
const HealthUnknown uint16 = 0

// HealthOK means samples are arriving and the loop is evaluating them.
const HealthOK uint16 = 1

// HealthProcessLost means the miss streak limit was reached: the target
// process is gone or its memory is unreadable.
const HealthProcessLost uint16 = 2

// HealthInputError means a key injection or key block call failed.
// Surfaced immediately: a failed unblock can leave the operator locked out.
const HealthInputError uint16 = 3
