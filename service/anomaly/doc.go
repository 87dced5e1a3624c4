// Package anomaly hosts the market anomaly detection service.
//
// Detections combine live quote data, an RSI indicator API and fixed
// rule thresholds; confirmed anomalies fan out to the dashboard as
// alerts, cases, workflows and risk registrations. The service keeps a
// reference-resolution cache so the agent can refer to "that trader"
// or a bare symbol fragment across detections.
package anomaly
