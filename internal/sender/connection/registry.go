package connection

// Shared by managers that were not given their own registry
var processRegistry = NewRegistry()

func NewRegistry() (registry *Registry) {
	registry = &Registry{byPort: make(map[int]*Manager)}
	return
}

// Closes the endpoint another manager holds on port. Returns true if one was evicted.
func (registry *Registry) evict(port int, claimant *Manager) (evicted bool) {
	if port == 0 {
		return
	}

	registry.mutex.Lock()
	holder, found := registry.byPort[port]
	if found && holder != claimant {
		delete(registry.byPort, port)
	}
	registry.mutex.Unlock()

	if !found || holder == claimant {
		return
	}

	evicted = holder.dropEndpoint()
	return
}

func (registry *Registry) register(port int, owner *Manager) {
	if port == 0 {
		return
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.byPort[port] = owner
}

func (registry *Registry) release(port int, owner *Manager) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if registry.byPort[port] == owner {
		delete(registry.byPort, port)
	}
}

// Manager currently registered on port, nil if none
func (registry *Registry) Holder(port int) (owner *Manager) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	owner = registry.byPort[port]
	return
}
