package monitoring

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gauge reports the current value of a tracked quantity, such as the number
// of hosted matches
type Gauge func() int

// Sample is one reading of every tracked quantity
type Sample struct {
	Goroutines int
	Gauges     map[string]int
	TakenAt    time.Time
}

// Metrics summarizes the readings so far
type Metrics struct {
	Baseline int            `json:"baseline"`
	Current  int            `json:"current"`
	Peak     int            `json:"peak"`
	Gauges   map[string]int `json:"gauges"`
	Peaks    map[string]int `json:"peaks"`
}

// Monitor periodically samples the goroutine count and registered gauges,
// and warns when goroutines exceed a threshold
type Monitor struct {
	mu     sync.RWMutex
	logger zerolog.Logger

	interval       time.Duration
	alertThreshold int
	alertCooldown  time.Duration
	lastAlert      time.Time

	baseline int
	current  int
	peak     int

	gauges     map[string]Gauge
	lastGauges map[string]int
	peaks      map[string]int

	now         func() time.Time
	goroutines  func() int
	stopOnce    sync.Once
	stop        chan struct{}
	done        chan struct{}
	startedOnce sync.Once
}

// NewMonitor creates a monitor sampling every interval. A non-positive
// threshold disables the leak warning.
func NewMonitor(logger zerolog.Logger, interval time.Duration, alertThreshold int) *Monitor {
	baseline := runtime.NumGoroutine()
	return &Monitor{
		logger:         logger.With().Str("component", "Monitor").Logger(),
		interval:       interval,
		alertThreshold: alertThreshold,
		alertCooldown:  5 * time.Minute,
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		gauges:         make(map[string]Gauge),
		lastGauges:     make(map[string]int),
		peaks:          make(map[string]int),
		now:            time.Now,
		goroutines:     runtime.NumGoroutine,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Register adds a named gauge to every sample
func (m *Monitor) Register(name string, g Gauge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = g
}

// Start begins sampling in the background
func (m *Monitor) Start() {
	m.startedOnce.Do(func() {
		go m.run()
		m.logger.Info().
			Int("baseline", m.baseline).
			Dur("interval", m.interval).
			Msg("Started monitoring")
	})
}

// Stop ends sampling. It is safe to call more than once, and before Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.startedOnce.Do(func() { close(m.done) })
	<-m.done
}

func (m *Monitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sampleSafely()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) sampleSafely() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Msg("Monitor sample panicked")
		}
	}()
	m.Sample()
}

// Sample takes one reading, records peaks and logs it
func (m *Monitor) Sample() Sample {
	m.mu.RLock()
	names := make([]string, 0, len(m.gauges))
	for name := range m.gauges {
		names = append(names, name)
	}
	gauges := make(map[string]Gauge, len(m.gauges))
	for name, g := range m.gauges {
		gauges[name] = g
	}
	m.mu.RUnlock()
	sort.Strings(names)

	// gauges may take their own locks; read them outside mu
	s := Sample{
		Goroutines: m.goroutines(),
		Gauges:     make(map[string]int, len(names)),
		TakenAt:    m.now(),
	}
	for _, name := range names {
		s.Gauges[name] = gauges[name]()
	}

	m.mu.Lock()
	m.current = s.Goroutines
	if s.Goroutines > m.peak {
		m.peak = s.Goroutines
	}
	for name, v := range s.Gauges {
		m.lastGauges[name] = v
		if v > m.peaks[name] {
			m.peaks[name] = v
		}
	}
	alert := m.alertThreshold > 0 &&
		s.Goroutines > m.alertThreshold &&
		(m.lastAlert.IsZero() || s.TakenAt.Sub(m.lastAlert) > m.alertCooldown)
	if alert {
		m.lastAlert = s.TakenAt
	}
	baseline := m.baseline
	m.mu.Unlock()

	event := m.logger.Debug().
		Int("goroutines", s.Goroutines).
		Int("baseline", baseline)
	for _, name := range names {
		event = event.Int(name, s.Gauges[name])
	}
	event.Msg("Runtime metrics")

	if alert {
		m.logger.Warn().
			Int("goroutines", s.Goroutines).
			Int("threshold", m.alertThreshold).
			Msg("High goroutine count detected - possible leak")
	}
	return s
}

// Metrics returns the latest readings and peaks
func (m *Monitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Metrics{
		Baseline: m.baseline,
		Current:  m.current,
		Peak:     m.peak,
		Gauges:   copyMap(m.lastGauges),
		Peaks:    copyMap(m.peaks),
	}
}

func copyMap(src map[string]int) map[string]int {
	result := make(map[string]int, len(src))
	for k, v := range src {
		result[k] = v
	}
	return result
}
