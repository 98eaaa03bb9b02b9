// Package config provides the node configuration collaborator
// (enableWal, forceWalPeriodInMs, registerBufferSleepIntervalInMs,
// registerBufferRejectThresholdInMs, connectionTimeoutMs), loaded from a
// YAML file the way cmd/warren/apply.go loads resource manifests.
package config
