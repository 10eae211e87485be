// Package metrics exports simulation state as Prometheus metrics.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/sprout/components"
	"github.com/pthm-cable/sprout/world"
)

const namespace = "sprout"

// Metrics owns a private registry so several runs can coexist in one
// process.
type Metrics struct {
	registry *prometheus.Registry

	turns      prometheus.Counter
	cells      *prometheus.GaugeVec
	events     *prometheus.CounterVec
	fruitSugar prometheus.Gauge
	player     *prometheus.GaugeVec
	totals     *prometheus.GaugeVec
	energyMean prometheus.Gauge
	outcome    prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turns simulated.",
		}),
		cells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells",
			Help:      "Live cells in the overlay by kind.",
		}, []string{"kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "World events by kind.",
		}, []string{"kind"}),
		fruitSugar: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fruit_sugar",
			Help:      "Sugar held by the fruit, 0 without one.",
		}),
		player: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_resource",
			Help:      "Player ledger contents.",
		}, []string{"resource"}),
		totals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resource_total",
			Help:      "Resources held across all ledgers.",
		}, []string{"resource"}),
		energyMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cell_energy_mean",
			Help:      "Mean energy of live cells.",
		}),
		outcome: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outcome",
			Help:      "0 playing, 1 win, 2 lose.",
		}),
	}
	m.registry.MustRegister(m.turns, m.cells, m.events, m.fruitSugar, m.player, m.totals, m.energyMean, m.outcome)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Turns returns the turn counter.
func (m *Metrics) Turns() prometheus.Counter { return m.turns }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEvent counts a world event. Register it with World.OnEvent.
func (m *Metrics) ObserveEvent(e world.Event) {
	m.events.WithLabelValues(e.Kind.String()).Inc()
}

// Observe samples w after a turn.
func (m *Metrics) Observe(w *world.World) {
	m.turns.Inc()

	counts := w.CountCells()
	for _, kind := range append(components.CellKinds(), components.KindGrowing) {
		m.cells.WithLabelValues(strings.ToLower(kind.String())).Set(float64(counts[kind]))
	}

	var sugar float64
	if fruit, ok := w.Fruit(); ok && fruit.Inventory() != nil {
		sugar = fruit.Inventory().Sugar()
	}
	m.fruitSugar.Set(sugar)

	inv := w.Player().Inv
	m.player.WithLabelValues("water").Set(inv.Water())
	m.player.WithLabelValues("sugar").Set(inv.Sugar())

	water, total := w.Totals()
	m.totals.WithLabelValues("water").Set(water)
	m.totals.WithLabelValues("sugar").Set(total)

	energies := w.CellEnergies()
	var mean float64
	for _, e := range energies {
		mean += e
	}
	if len(energies) > 0 {
		mean /= float64(len(energies))
	}
	m.energyMean.Set(mean)

	m.outcome.Set(float64(w.CheckWinLoss()))
}
