package pipeline

import "github.com/sirupsen/logrus"

// log is the package-level structured logger. It never receives
// password, key, plaintext, or ciphertext material, only operational
// metadata (mode, sizes, chunk counts).
var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger overrides the package-level logger, letting a host binding
// route pipeline diagnostics into its own logging pipeline.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}

func modeName(m Mode) string {
	switch m {
	case SingleShot:
		return "single_shot"
	case InMemoryParallel:
		return "in_memory_parallel"
	case StreamingBatched:
		return "streaming_batched"
	default:
		return "unknown"
	}
}
