package config

import (
	"errors"
	"io/fs"
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool

	// dockerEnvPath exists in every Docker container.
	dockerEnvPath = "/.dockerenv"
)

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsRunningInDocker reports whether the process runs inside a Docker container.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat(dockerEnvPath)
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveHostForDocker maps loopback target hosts to host.docker.internal when
// running in Docker, so credentials that say "localhost" reach a database on the
// Docker host. Other hosts are returned unchanged.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, inDocker bool) string {
	if !inDocker {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	}
	return host
}
