package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// simulate drives a front desk through a busy day: receptionists adding
// walk-ins, flipping statuses, snoozing reminders, and refreshing the board,
// all against a running server.

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	AddRatio    float64
	StatusRatio float64
	ReadRatio   float64
}

var doctors = []string{
	"DR.HUSSAIN", "DR.SHIFA",
	"DR.FARHATH", "DR.NIMAI", "DR.ANAND",
}

var procedures = []string{
	"RCT", "CROWN PREP", "EXTRACTION", "SCALING", "FILLING", "CONSULTATION",
}

var statuses = []string{
	"WAITING", "ARRIVED", "ON GOING", "DONE", "CANCELLED",
}

type RowPool struct {
	mu   sync.RWMutex
	rows []string // row IDs created during the run
}

func (rp *RowPool) Add(id string) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.rows = append(rp.rows, id)
}

func (rp *RowPool) Random(rng *rand.Rand) (string, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	if len(rp.rows) == 0 {
		return "", false
	}
	return rp.rows[rng.Intn(len(rp.rows))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	AddRow   OperationMetrics
	Status   OperationMetrics
	Read     OperationMetrics
	Snooze   OperationMetrics
	Allocate OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *RowPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d add=%.2f status=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.AddRatio, cfg.StatusRatio, cfg.ReadRatio)

	gofakeit.Seed(time.Now().UnixNano())

	sim := &Simulator{
		config: cfg,
		pool:   &RowPool{},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 4),
		AddRatio:    getFloat("SIM_ADD_RATIO", 0.3),
		StatusRatio: getFloat("SIM_STATUS_RATIO", 0.3),
		ReadRatio:   getFloat("SIM_READ_RATIO", 0.4),
	}

	// Normalize ratios
	total := cfg.AddRatio + cfg.StatusRatio + cfg.ReadRatio
	if total > 0 {
		cfg.AddRatio /= total
		cfg.StatusRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.AddRatio:
				s.doAddRow(ctx, rng)
			case r < s.config.AddRatio+s.config.StatusRatio:
				s.doStatusChange(ctx, rng)
			default:
				// Read operations - distribute evenly
				switch rng.Intn(3) {
				case 0:
					s.doReadSchedule(ctx)
				case 1:
					s.doAllocationPreview(ctx, rng)
				case 2:
					s.doSnooze(ctx, rng)
				}
			}
		}
	}
}

func (s *Simulator) doAddRow(ctx context.Context, rng *rand.Rand) {
	startMin := 9*60 + rng.Intn(20)*30
	endMin := startMin + (1+rng.Intn(4))*30

	reqBody := map[string]any{
		"patient_id":   fmt.Sprintf("P%04d", rng.Intn(10000)),
		"patient_name": strings.ToUpper(gofakeit.FirstName()),
		"in_time":      fmt.Sprintf("%02d:%02d", startMin/60, startMin%60),
		"out_time":     fmt.Sprintf("%02d:%02d", (endMin/60)%24, endMin%60),
		"procedure":    procedures[rng.Intn(len(procedures))],
		"doctor":       doctors[rng.Intn(len(doctors))],
	}
	body, _ := json.Marshal(reqBody)

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/schedule/rows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusCreated {
			success = true
			var created struct {
				ID string `json:"id"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if len(bodyBytes) > 0 {
				json.Unmarshal(bodyBytes, &created)
				if created.ID != "" {
					s.pool.Add(created.ID)
				}
			}
		}
	}

	s.metrics.AddRow.Record(latency, success, false)
}

func (s *Simulator) doStatusChange(ctx context.Context, rng *rand.Rand) {
	rowID, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	reqBody := map[string]string{"status": statuses[rng.Intn(len(statuses))]}
	body, _ := json.Marshal(reqBody)

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/schedule/rows/%s/status", s.config.APIBaseURL, rowID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			success = true
		} else if resp.StatusCode == http.StatusNotFound {
			// Another worker hard-deleted or the day was cleared.
			conflict = true
		}
	}

	s.metrics.Status.Record(latency, success, conflict)
}

func (s *Simulator) doReadSchedule(ctx context.Context) {
	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, "GET", s.config.APIBaseURL+"/schedule", nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Read.Record(latency, success, false)
}

func (s *Simulator) doAllocationPreview(ctx context.Context, rng *rand.Rand) {
	startMin := 9*60 + rng.Intn(20)*30

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/allocation/preview?doctor=%s&start=%02d:%02d&end=%02d:%02d",
			s.config.APIBaseURL, doctors[rng.Intn(len(doctors))],
			startMin/60, startMin%60, (startMin+30)/60, (startMin+30)%60), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Allocate.Record(latency, success, false)
}

func (s *Simulator) doSnooze(ctx context.Context, rng *rand.Rand) {
	rowID, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/reminders/%s/snooze", s.config.APIBaseURL, rowID), strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			success = true
		} else if resp.StatusCode == http.StatusNotFound {
			conflict = true
		}
	}

	s.metrics.Snooze.Record(latency, success, conflict)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Add Row", &s.metrics.AddRow)
	printOperationReport("Status Change", &s.metrics.Status)
	printOperationReport("Read Schedule", &s.metrics.Read)
	printOperationReport("Allocation Preview", &s.metrics.Allocate)
	printOperationReport("Snooze", &s.metrics.Snooze)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errored := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errored > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errored, float64(errored)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
