// Package plugins collects the runtime environment contributed by plugins.
package plugins

import "github.com/melih/lighthouse-jobs/internal/core/ports"

// Engine holds env var plugins in registration order.
type Engine struct {
	plugins []ports.EnvVarsPlugin
}

// NewEngine creates an engine over the given plugins.
func NewEngine(plugins ...ports.EnvVarsPlugin) *Engine {
	return &Engine{plugins: plugins}
}

// Add appends a plugin.
func (e *Engine) Add(p ports.EnvVarsPlugin) {
	e.plugins = append(e.plugins, p)
}

// RuntimeEnvVars returns the non-empty variable maps of every plugin,
// in registration order. A nil engine contributes nothing.
func (e *Engine) RuntimeEnvVars() []map[string]string {
	if e == nil {
		return nil
	}
	var out []map[string]string
	for _, p := range e.plugins {
		if vars := p.JobRuntimeEnvVars(); len(vars) > 0 {
			out = append(out, vars)
		}
	}
	return out
}

// Static is a plugin contributing a fixed set of variables.
type Static map[string]string

// JobRuntimeEnvVars implements ports.EnvVarsPlugin.
func (s Static) JobRuntimeEnvVars() map[string]string {
	return s
}
