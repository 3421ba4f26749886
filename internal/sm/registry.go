package sm

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/orbitalos/backend/internal/infrastructure/logging"
	"github.com/orbitalos/backend/internal/infrastructure/monitoring"
	"github.com/orbitalos/backend/internal/ipc"
	"github.com/orbitalos/backend/internal/kernel"
)

// WellKnownName is the default name the root dispatcher is installed
// under. Every process resolves further services through it.
const WellKnownName = "sm:"

// ServiceRegistry owns the mapping from validated service name to the
// connector side of the service's port. Entries are never auto-removed;
// a stored connector stays valid for the registry's lifetime.
type ServiceRegistry struct {
	mu          sync.RWMutex
	services    map[string]*kernel.ClientPort
	dispatchers map[string]Dispatcher

	installed  bool
	controller *Controller

	log     *logging.Logger
	metrics *monitoring.Metrics
}

// ServiceInfo is one registry entry as exposed to the inspection API.
type ServiceInfo struct {
	Name           string `json:"name"`
	MaxSessions    uint32 `json:"max_sessions"`
	ActiveSessions uint32 `json:"active_sessions"`
	PortID         uint32 `json:"port_id"`
}

// NewServiceRegistry creates an empty registry. Metrics may be nil.
func NewServiceRegistry(log *logging.Logger, metrics *monitoring.Metrics) *ServiceRegistry {
	return &ServiceRegistry{
		services:    make(map[string]*kernel.ClientPort),
		dispatchers: make(map[string]Dispatcher),
		log:         log.Named("registry"),
		metrics:     metrics,
	}
}

// Register validates the name, creates a port pair, stores the connector
// side under the name, and returns the acceptor side to the caller. The
// registry never exposes the acceptor again.
func (r *ServiceRegistry) Register(name string, maxSessions uint32) (*kernel.ServerPort, error) {
	if err := ValidateName(name); err != nil {
		r.countRegistration("invalid_name")
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		r.countRegistration("already_registered")
		return nil, ErrAlreadyRegistered
	}

	serverPort, clientPort := kernel.CreatePortPair(maxSessions, name)
	r.services[name] = clientPort

	if r.metrics != nil {
		r.metrics.ServicesRegistered.Set(float64(len(r.services)))
	}
	r.countRegistration("ok")
	r.log.Info("service registered",
		zap.String("service", name),
		zap.Uint32("max_sessions", maxSessions),
	)
	return serverPort, nil
}

// GetServicePort validates the name and returns the stored connector.
// The returned reference is shared with the registry, never owned by the
// caller.
func (r *ServiceRegistry) GetServicePort(name string) (*kernel.ClientPort, error) {
	if err := ValidateName(name); err != nil {
		r.countLookup("invalid_name")
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	port, exists := r.services[name]
	if !exists {
		r.countLookup("not_registered")
		return nil, ErrNotRegistered
	}
	r.countLookup("ok")
	return port, nil
}

// ConnectToService resolves the name and connects through the resulting
// port. Whichever step fails first determines the error.
func (r *ServiceRegistry) ConnectToService(name string) (*kernel.Session, error) {
	port, err := r.GetServicePort(name)
	if err != nil {
		return nil, err
	}
	return port.Connect()
}

// InstallInterfaces performs one-time bring-up: it constructs the root
// dispatcher bound to this registry, installs it under the well-known
// name, and constructs the controller. Calling it twice on one instance
// is a programming error and panics rather than leaving bring-up in an
// inconsistent state.
func (r *ServiceRegistry) InstallInterfaces(wellKnownName string, maxSessions uint32) error {
	r.mu.Lock()
	if r.installed {
		r.mu.Unlock()
		panic("sm: InstallInterfaces called twice on one registry")
	}
	r.installed = true
	r.mu.Unlock()

	if wellKnownName == "" {
		wellKnownName = WellKnownName
	}

	root := NewSM(r, r.log, r.metrics)
	if _, err := r.Register(wellKnownName, maxSessions); err != nil {
		return err
	}
	r.BindDispatcher(wellKnownName, root)

	r.mu.Lock()
	r.controller = NewController(r.log)
	r.mu.Unlock()

	r.log.Info("root dispatcher installed", zap.String("service", wellKnownName))
	return nil
}

// BindDispatcher attaches an in-process command handler to a registered
// name. Sessions to names without a dispatcher exist but serve no
// commands locally.
func (r *ServiceRegistry) BindDispatcher(name string, d Dispatcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatchers[name] = d
}

// Dispatcher returns the in-process handler bound to a name, if any.
func (r *ServiceRegistry) Dispatcher(name string) (Dispatcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dispatchers[name]
	return d, ok
}

// InvokeControlRequest routes a control-namespace command to the
// controller installed at bring-up.
func (r *ServiceRegistry) InvokeControlRequest(ctx *ipc.Context) {
	r.mu.RLock()
	controller := r.controller
	r.mu.RUnlock()
	if controller != nil {
		controller.HandleRequest(ctx)
	}
}

// List returns a snapshot of all registry entries, sorted by name.
func (r *ServiceRegistry) List() []ServiceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ServiceInfo, 0, len(r.services))
	for name, port := range r.services {
		infos = append(infos, ServiceInfo{
			Name:           name,
			MaxSessions:    port.MaxSessions(),
			ActiveSessions: port.ActiveSessions(),
			PortID:         port.ObjectID(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Stats returns aggregate registry statistics.
func (r *ServiceRegistry) Stats() map[string]interface{} {
	infos := r.List()
	var active uint32
	for _, info := range infos {
		active += info.ActiveSessions
	}
	return map[string]interface{}{
		"total_services":  len(infos),
		"active_sessions": active,
	}
}

func (r *ServiceRegistry) countRegistration(outcome string) {
	if r.metrics != nil {
		r.metrics.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (r *ServiceRegistry) countLookup(outcome string) {
	if r.metrics != nil {
		r.metrics.Lookups.WithLabelValues(outcome).Inc()
	}
}
