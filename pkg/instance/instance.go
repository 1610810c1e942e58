package instance

import "os"

// GetID identifies this worker process in logs and lock values. POS_WORKER_ID
// wins, then the hostname.
func GetID() string {
	if id := os.Getenv("POS_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
