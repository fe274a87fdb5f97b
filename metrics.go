package tftp

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is an optional prometheus.Collector tracking client activity.
// It is nil-safe: every method is a no-op on a nil receiver, so a Client
// never has to special-case "no metrics registered", the same way
// runZeroInc-sockstats' TCPInfoCollector is a plain mutex-guarded struct
// rather than something pulled from a global registry.
type Collector struct {
	mu sync.Mutex

	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	retransmits     prometheus.Counter
	blockMismatches prometheus.Counter
	transfers       *prometheus.CounterVec
	duration        prometheus.Histogram
}

// NewCollector builds a ready-to-register Collector.
func NewCollector() *Collector {
	return &Collector{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tftp_packets_sent_total",
			Help: "TFTP packets sent, by opcode.",
		}, []string{"opcode"}),
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tftp_packets_received_total",
			Help: "TFTP packets received, by opcode.",
		}, []string{"opcode"}),
		retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tftp_retransmits_total",
			Help: "Timeout-triggered packet retransmissions.",
		}),
		blockMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tftp_block_mismatches_total",
			Help: "Received packets discarded for carrying an unexpected block number.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tftp_transfers_total",
			Help: "Completed transfers, by direction and result.",
		}, []string{"direction", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tftp_transfer_duration_seconds",
			Help:    "Wall-clock duration of completed transfers.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	if c == nil {
		return
	}
	c.packetsSent.Describe(ch)
	c.packetsReceived.Describe(ch)
	ch <- c.retransmits.Desc()
	ch <- c.blockMismatches.Desc()
	c.transfers.Describe(ch)
	ch <- c.duration.Desc()
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	c.packetsSent.Collect(ch)
	c.packetsReceived.Collect(ch)
	ch <- c.retransmits
	ch <- c.blockMismatches
	c.transfers.Collect(ch)
	ch <- c.duration
}

func (c *Collector) observeSent(opcode Opcode) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetsSent.WithLabelValues(opcode.String()).Inc()
}

func (c *Collector) observeReceived(opcode Opcode) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetsReceived.WithLabelValues(opcode.String()).Inc()
}

func (c *Collector) observeRetransmit() {
	if c == nil {
		return
	}
	c.retransmits.Inc()
}

func (c *Collector) observeBlockMismatch() {
	if c == nil {
		return
	}
	c.blockMismatches.Inc()
}

func (c *Collector) observeTransfer(direction string, result Kind, seconds float64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers.WithLabelValues(direction, result.String()).Inc()
	c.duration.Observe(seconds)
}
