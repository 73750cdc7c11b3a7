// Package memory sets the Go runtime soft memory limit for containerized
// deployments.
//
// GOMAXPROCS follows cgroup CPU limits on its own; GOMEMLIMIT does not. Call
// [ConfigureFromEnv] once, early in main:
//
//	memory.ConfigureFromEnv()
//
// # Environment Variables
//
//   - GOMEMLIMIT: standard Go variable. When set it wins and nothing else is read.
//   - MEMORY_LIMIT: container memory limit in bytes, usually injected through
//     the Kubernetes Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap, between 0 and 1.
//     Defaults to [DefaultMemoryRatio].
//
// ffprobe and ffmpeg run as child processes inside the same cgroup, so the
// default ratio leaves half of the container for them. Raise it only when
// transcoding is disabled or runs elsewhere.
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//	- name: MEMORY_RATIO
//	  value: "0.4"
package memory
