package domain

import "time"

// Container represents a container as reported by the runtime.
type Container struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Image     string            `json:"image"`
	Status    string            `json:"status"`
	State     string            `json:"state"` // running, exited, etc.
	CreatedAt time.Time         `json:"created_at"`
	Labels    map[string]string `json:"labels,omitempty"`
	Ports     []PortMapping     `json:"ports,omitempty"`
}

// PortMapping is one published port of a container.
// HostPort is 0 when the container port is exposed but not published.
type PortMapping struct {
	HostIP        string `json:"host_ip,omitempty"`
	HostPort      int    `json:"host_port"`
	ContainerPort int    `json:"container_port"`
	Protocol      string `json:"protocol"`
}

// Running reports whether the runtime considers the container running.
func (c Container) Running() bool {
	return c.State == "running"
}

// PublishedPort returns the first host port published by the container,
// or 0 if none is published.
func (c Container) PublishedPort() int {
	for _, p := range c.Ports {
		if p.HostPort != 0 {
			return p.HostPort
		}
	}
	return 0
}
