package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a search run ID with a timestamp prefix
func GenerateRunID(mode string) string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%s-%s-%s", mode, timestamp, uuid.New().String()[:8])
}
