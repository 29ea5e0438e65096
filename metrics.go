package tdb

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/tdb/ident"
)

// metrics holds the counters of one database. A nil *metrics records
// nothing.
type metrics struct {
	decodes prometheus.Counter
	retries prometheus.Counter
	items   prometheus.Counter
	lookups *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		decodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tdb_trail_decodes_total",
			Help: "Total trails decoded through cursors",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tdb_trail_decode_retries_total",
			Help: "Total decodes repeated with a larger buffer",
		}),
		items: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tdb_trail_items_total",
			Help: "Total items produced by cursors",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tdb_identifier_lookups_total",
			Help: "Total identifier lookups",
		}, []string{"mode", "result"}),
	}

	var err error
	m.decodes, err = register(reg, m.decodes)
	if err != nil {
		return nil, err
	}
	if m.retries, err = register(reg, m.retries); err != nil {
		return nil, err
	}
	if m.items, err = register(reg, m.items); err != nil {
		return nil, err
	}
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}

	return m, nil
}

// register registers c, reusing an identical collector registered by
// another database on the same registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, errors.Wrap(err, "tdb: register metrics")
}

func (m *metrics) decoded(items, retries int) {
	if m == nil {
		return
	}
	m.decodes.Inc()
	m.items.Add(float64(items))
	m.retries.Add(float64(retries))
}

func (m *metrics) lookup(mode ident.Mode, found bool) {
	if m == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.lookups.WithLabelValues(string(mode), result).Inc()
}
