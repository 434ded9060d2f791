package service

import "github.com/hashicorp/go-metrics"

var (
	MetricRegistrationCount = []string{"registry", "registration", "count"}
	MetricRemovalCount      = []string{"registry", "removal", "count"}
	MetricConnectCount      = []string{"lifecycle", "connect", "count"}
	MetricConnectErrorCount = []string{"lifecycle", "connect", "error", "count"}
	MetricDisconnectCount   = []string{"lifecycle", "disconnect", "count"}
	MetricRequestCount      = []string{"router", "request", "count"}
)

// TelemetryLabel names a metric label.
type TelemetryLabel string

var (
	LabelOutcome TelemetryLabel = "outcome"
	LabelModule  TelemetryLabel = "module"
	LabelAction  TelemetryLabel = "action"
	LabelStatus  TelemetryLabel = "status"
)

// M builds a metric label with the given value.
func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}
