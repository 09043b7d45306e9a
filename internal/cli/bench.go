package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark a running parley chat service",
		RunE:  runBench,
	}

	cmd.Flags().String("server", "http://127.0.0.1:8001", "chat service base URL")
	cmd.Flags().Int("n", 64, "number of requests")
	cmd.Flags().Int("concurrency", 8, "concurrent workers")
	cmd.Flags().String("message", "Say hello in one short sentence.", "message sent on every request")

	return cmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	total, _ := cmd.Flags().GetInt("n")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	message, _ := cmd.Flags().GetString("message")

	serverURL = strings.TrimSuffix(serverURL, "/")

	if total <= 0 {
		return fmt.Errorf("n must be positive")
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > total {
		concurrency = total
	}

	client := &http.Client{Timeout: 120 * time.Second}

	// One untimed request first so model cold-start does not skew results.
	fmt.Println("warming up...")
	if _, err := benchRequest(client, serverURL, message); err != nil {
		return fmt.Errorf("warmup request failed: %w", err)
	}

	fmt.Printf("benchmarking %s: %d requests, %d workers\n", serverURL, total, concurrency)

	jobs := make(chan struct{}, total)
	for i := 0; i < total; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	var mu sync.Mutex
	var durations []time.Duration
	var failures int

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range jobs {
				elapsed, err := benchRequest(client, serverURL, message)

				mu.Lock()
				if err != nil {
					failures++
				} else {
					durations = append(durations, elapsed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	wall := time.Since(start)

	if len(durations) == 0 {
		return fmt.Errorf("all %d requests failed", total)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	fmt.Println()
	fmt.Printf("requests:   %d ok, %d failed\n", len(durations), failures)
	fmt.Printf("wall time:  %.3fs\n", wall.Seconds())
	fmt.Printf("throughput: %.2f req/s\n", float64(len(durations))/wall.Seconds())
	fmt.Printf("latency:    avg %.3fs  min %.3fs  p50 %.3fs  p95 %.3fs  max %.3fs\n",
		(sum / time.Duration(len(durations))).Seconds(),
		durations[0].Seconds(),
		percentile(durations, 0.50).Seconds(),
		percentile(durations, 0.95).Seconds(),
		durations[len(durations)-1].Seconds(),
	)

	return nil
}

func benchRequest(client *http.Client, serverURL, message string) (time.Duration, error) {
	body, err := json.Marshal(map[string]any{"message": message})
	if err != nil {
		return 0, err
	}

	start := time.Now()

	httpResp, err := client.Post(serverURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %s", httpResp.Status)
	}

	var payload map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)-1) * q)

	return sorted[index]
}
