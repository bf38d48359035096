// Package pricing conditions raw market price series before optimization:
// null handling, clamping to market bounds and median-filter despiking.
// It also provides the median helpers shared with the reservation price
// estimator.
package pricing
