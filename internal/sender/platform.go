package sender

import (
	"devsyslog/internal/network"
)

// Platform for a regular process: the scheduler always runs and link state comes from the interfaces
type HostPlatform struct {
	Task string
	Core int
}

func (platform HostPlatform) SchedulerRunning() bool {
	return true
}

func (platform HostPlatform) LinkUp() bool {
	return network.LinkUp()
}

func (platform HostPlatform) TaskName() string {
	return platform.Task
}

func (platform HostPlatform) CoreID() int {
	return platform.Core
}
