// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "pebble"

var _ prometheus.Collector = (*statsCollector)(nil)

type metrics struct {
	stallLock  sync.Mutex
	stallStart time.Time
	writeStall metric.Averager

	getLatency   metric.Averager
	batchWrites  prometheus.Counter
	batchEntries prometheus.Counter

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge
}

func newMetrics(stats func() (*pebble.Metrics, bool)) (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(
		"pebble_write_stall",
		"time spent stalled waiting for disk writes",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(
		"pebble_read_latency",
		"time spent serving a get",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall: writeStall,
		getLatency: getLatency,
		batchWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batch_writes",
			Help:      "number of batches committed",
		}),
		batchEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batch_entries",
			Help:      "number of puts and deletes committed in batches",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compactions",
			Help:      "number of compactions started by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_compactions",
			Help:      "number of running compactions",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.batchWrites),
		r.Register(m.batchEntries),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(newStatsCollector(stats)),
	)
	return r, m, errs.Err
}

func (m *metrics) listener() *pebble.EventListener {
	return &pebble.EventListener{
		CompactionBegin: func(info pebble.CompactionInfo) {
			m.activeCompactions.Inc()
			level := "l1+"
			if len(info.Input) > 0 && info.Input[0].Level == 0 {
				level = "l0"
			}
			m.compactions.WithLabelValues(level).Inc()
		},
		CompactionEnd: func(pebble.CompactionInfo) {
			m.activeCompactions.Dec()
		},
		WriteStallBegin: func(pebble.WriteStallBeginInfo) {
			m.stallLock.Lock()
			m.stallStart = time.Now()
			m.stallLock.Unlock()
		},
		WriteStallEnd: func() {
			m.stallLock.Lock()
			m.writeStall.Observe(float64(time.Since(m.stallStart)))
			m.stallLock.Unlock()
		},
	}
}

type statGauge struct {
	desc  *prometheus.Desc
	value func(*pebble.Metrics) float64
}

// statsCollector reads the engine's counters at scrape time. Nothing is
// reported once the database is closed.
type statsCollector struct {
	stats  func() (*pebble.Metrics, bool)
	gauges []statGauge
}

func newStatsCollector(stats func() (*pebble.Metrics, bool)) *statsCollector {
	gauge := func(name, help string, value func(*pebble.Metrics) float64) statGauge {
		return statGauge{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, nil, nil),
			value: value,
		}
	}
	return &statsCollector{
		stats: stats,
		gauges: []statGauge{
			gauge("disk_usage", "bytes used on disk by the store", func(m *pebble.Metrics) float64 {
				return float64(m.DiskSpaceUsage())
			}),
			gauge("memtable_size", "bytes allocated by memtables", func(m *pebble.Metrics) float64 {
				return float64(m.MemTable.Size)
			}),
			gauge("tombstone_count", "approximate count of internal tombstones", func(m *pebble.Metrics) float64 {
				return float64(m.Keys.TombstoneCount)
			}),
			gauge("obsolete_table_size", "bytes in tables no longer referenced", func(m *pebble.Metrics) float64 {
				return float64(m.Table.ObsoleteSize)
			}),
			gauge("zombie_table_size", "bytes in unreferenced tables still held by iterators", func(m *pebble.Metrics) float64 {
				return float64(m.Table.ZombieSize)
			}),
			gauge("obsolete_wal_size", "bytes in WAL files no longer needed", func(m *pebble.Metrics) float64 {
				return float64(m.WAL.ObsoletePhysicalSize)
			}),
		},
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.gauges {
		ch <- g.desc
	}
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	m, ok := c.stats()
	if !ok {
		return
	}
	for _, g := range c.gauges {
		ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, g.value(m))
	}
}
