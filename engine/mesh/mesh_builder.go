package mesh

import "github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"

type meshConfig struct {
	label       string
	pipelineKey string
	bindGroups  []bind_group_provider.BindGroupProvider
}

// MeshOption is a functional option used to configure a Mesh during construction.
type MeshOption func(*meshConfig)

// WithLabel sets the debug label of the mesh's GPU resources. Defaults to a random UUID label.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - MeshOption: a function that sets the label
func WithLabel(label string) MeshOption {
	return func(c *meshConfig) {
		c.label = label
	}
}

// WithPipelineKey sets the registered pipeline the mesh draws with.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MeshOption: a function that sets the pipeline key
func WithPipelineKey(key string) MeshOption {
	return func(c *meshConfig) {
		c.pipelineKey = key
	}
}

// WithBindGroups sets the providers whose bind groups are bound for every draw, group 0 first.
//
// Parameters:
//   - providers: the bind group providers
//
// Returns:
//   - MeshOption: a function that sets the bind groups
func WithBindGroups(providers ...bind_group_provider.BindGroupProvider) MeshOption {
	return func(c *meshConfig) {
		c.bindGroups = providers
	}
}
