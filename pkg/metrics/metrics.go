// Package metrics holds the Prometheus collectors exported by the POS services.
package metrics

const namespace = "pos"

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
