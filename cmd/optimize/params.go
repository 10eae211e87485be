// Package main provides CMA-ES optimization for sprout growth parameters.
package main

import (
	"math"

	"github.com/pthm-cable/sprout/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Photosynthesis
			{Name: "leaf_reaction_rate", Path: "leaf.reaction_rate", Min: 0.05, Max: 0.6, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Leaf.ReactionRate },
				set: func(c *config.Config, v float64) { c.Leaf.ReactionRate = v }},
			// Water uptake
			{Name: "root_cooldown", Path: "root.cooldown", Min: 2, Max: 20, Default: 10,
				get: func(c *config.Config) float64 { return float64(c.Root.Cooldown) },
				set: func(c *config.Config, v float64) { c.Root.Cooldown = int(math.Round(v)) }},
			// Diffusion
			{Name: "tissue_water_rate", Path: "diffusion.tissue.water", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Diffusion.Tissue.Water },
				set: func(c *config.Config, v float64) { c.Diffusion.Tissue.Water = v }},
			{Name: "tissue_sugar_rate", Path: "diffusion.tissue.sugar", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Diffusion.Tissue.Sugar },
				set: func(c *config.Config, v float64) { c.Diffusion.Tissue.Sugar = v }},
			{Name: "root_water_rate", Path: "diffusion.root.water", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Diffusion.Root.Water },
				set: func(c *config.Config, v float64) { c.Diffusion.Root.Water = v }},
			{Name: "soil_water_rate", Path: "diffusion.soil.water", Min: 0.02, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Diffusion.Soil.Water },
				set: func(c *config.Config, v float64) { c.Diffusion.Soil.Water = v }},
			// Cell energy
			{Name: "equalize_fraction", Path: "cell.equalize_fraction", Min: 0, Max: 0.5, Default: 0.25,
				get: func(c *config.Config) float64 { return c.Cell.EqualizeFraction },
				set: func(c *config.Config, v float64) { c.Cell.EqualizeFraction = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Max(spec.Min, math.Min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
