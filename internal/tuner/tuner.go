// Package tuner derives device-class-aware pipeline parameters
// (chunk size, parallel threshold, batch size) from (is_mobile,
// cpu_cores). Resolve is a pure function so tests can inject synthetic
// device profiles; its output must stay fixed for the duration of a
// single encrypt/decrypt operation.
package tuner

import "runtime"

const mib = 1024 * 1024
const gib = 1024 * mib

// Profile is the set of parameters that drive the pipeline's mode
// selection and batching for one operation.
type Profile struct {
	ChunkSize         int64
	ParallelThreshold int64
	BatchSize         int
}

// Resolve computes a Profile for the given device class and core count.
func Resolve(isMobile bool, cpuCores int) Profile {
	if isMobile {
		return Profile{
			ChunkSize:         128 * mib,
			ParallelThreshold: 512 * mib,
			BatchSize:         clamp(roundHalf(float64(cpuCores)*0.5), 2, 8),
		}
	}

	return Profile{
		ChunkSize:         256 * mib,
		ParallelThreshold: 1 * gib,
		BatchSize:         clamp(roundHalf(float64(cpuCores)*0.75), 4, 16),
	}
}

// DetectCPUCores reports the number of logical CPUs usable by the
// current process, for callers that don't want to hardcode a core count.
func DetectCPUCores() int {
	return runtime.NumCPU()
}

func roundHalf(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
