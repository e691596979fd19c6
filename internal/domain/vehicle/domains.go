// Package vehicle holds the static validation catalogue: how dashboard
// domains map onto stored KPI domains, which event types and sensors belong
// to each domain, and the KPI levels the dashboard filters by.
package vehicle

import (
	"slices"
	"strings"
)

// dashboard domain -> stored domain
var storedDomains = map[string]string{
	"chassis":     "suspension",
	"brake":       "brakes",
	"nvh":         "nvh",
	"ride":        "ride",
	"powertrain":  "electrical",
	"environment": "environment",
}

var eventTypes = map[string][]string{
	"suspension":  {"HighStrain", "Landing", "BottomOut", "GOut", "RockCrawl"},
	"brakes":      {"BrakeStop", "ABSActivation", "BrakeSqueal"},
	"nvh":         {"BrakeSqueal", "Washboard"},
	"ride":        {"Washboard", "Landing"},
	"electrical":  {},
	"environment": {"WinterSoak", "DesertSoak"},
}

// keyed by dashboard domain
var sensorPrefixes = map[string][]string{
	"chassis":     {"strain", "force", "load", "suspension"},
	"brake":       {"brake", "pressure", "decel", "speed", "abs"},
	"nvh":         {"mic", "spl", "freq", "order", "rpm", "vibration"},
	"ride":        {"accel", "seat", "steer", "iso"},
	"powertrain":  {"power", "voltage", "current", "thd", "efficiency"},
	"environment": {"temp", "ambient", "thermal", "environment"},
}

// StoredDomain maps a dashboard domain name onto the domain its KPIs are
// stored under. Unknown names pass through lowercased.
func StoredDomain(dashboard string) string {
	d := strings.ToLower(dashboard)
	if s, ok := storedDomains[d]; ok {
		return s
	}
	return d
}

// EventTypes lists the event types relevant to a stored domain. An empty
// result means events are not filtered by type.
func EventTypes(stored string) []string {
	return eventTypes[stored]
}

// MatchesEvent reports whether an event type belongs to the stored domain.
func MatchesEvent(stored, eventType string) bool {
	types := eventTypes[stored]
	return len(types) == 0 || slices.Contains(types, eventType)
}

// MatchesSensor reports whether a sensor id belongs to the dashboard domain.
// Domains without prefixes match every sensor.
func MatchesSensor(dashboard, sensorID string) bool {
	prefixes := sensorPrefixes[strings.ToLower(dashboard)]
	if len(prefixes) == 0 {
		return true
	}
	id := strings.ToLower(sensorID)
	for _, p := range prefixes {
		if strings.Contains(id, p) {
			return true
		}
	}
	return false
}
