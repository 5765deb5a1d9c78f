package registry

import (
	"fmt"

	"github.com/hashicorp/consul/api"
)

// ConsulRegistry registers the service with a Consul agent so it is
// discoverable by the rest of the platform.
type ConsulRegistry struct {
	client    *api.Client
	serviceID string
}

// NewConsulRegistry creates a ConsulRegistry talking to the agent at the
// given address.
func NewConsulRegistry(address string) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &ConsulRegistry{client: client}, nil
}

// Register registers the service with an HTTP health check.
func (r *ConsulRegistry) Register(name, host string, port int) error {
	r.serviceID = fmt.Sprintf("%s-%s-%d", name, host, port)

	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    name,
		Address: host,
		Port:    port,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, port),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister removes the service registration.
func (r *ConsulRegistry) Deregister() error {
	if r.serviceID == "" {
		return nil
	}
	return r.client.Agent().ServiceDeregister(r.serviceID)
}
