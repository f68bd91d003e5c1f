package kv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/pDict/cmd/util"
	"github.com/ValentinKolb/pDict/lib/dict"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for pDict stores",
		Long:    "Runs a series of micro benchmarks (set, get, scan, ...) against the configured store and reports latency percentiles and throughput per operation.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfValueSizeKB = 100
	perfNumThreads  = 10
	perfKeySpread   = 100
	perfOps         = 10_000
	perfSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10_000, util.WrapString("Total number of operations per benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOps = viper.GetInt("ops")
	if skip := viper.GetString("skip"); skip != "" {
		perfSkip = strings.Split(skip, ",")
	}

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	return withStore(func(st *store) error {
		fmt.Println("Performance testing tool for pDict stores")

		// Print configuration
		fmt.Println()
		fmt.Println("Configuration:")
		fmt.Printf("Engine: %s\n", viper.GetString("engine"))
		fmt.Printf("Key type: %s\n", viper.GetString("key-type"))
		fmt.Printf("Threads: %d\n", perfNumThreads)
		fmt.Printf("Operations: %d\n", perfOps)
		fmt.Println()

		fmt.Println("starting tests...")

		results := make(map[string]gometrics.Timer)
		value := "test"
		largeValue := strings.Repeat("x", perfValueSizeKB*1024)

		run := func(name string, setup func(getKey func(int) string), op func(st *store, key string) error) {
			timer := gometrics.NewTimer()
			results[name] = timer

			if shouldSkip(name) {
				printResult(name, timer)
				return
			}

			getKey, iter := getKeys(name)
			if setup != nil {
				setup(getKey)
			}

			var wg sync.WaitGroup
			var next atomic.Int64
			for w := 0; w < perfNumThreads; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						i := int(next.Add(1)) - 1
						if i >= perfOps {
							return
						}
						timer.Time(func() {
							if err := op(st, getKey(i)); err != nil {
								log.Printf("(%s) - operation failed: %v\n", name, err)
							}
						})
					}
				}()
			}
			wg.Wait()

			// cleanup
			iter(func(k string) {
				if _, err := st.del(k); err != nil {
					log.Printf("(%s) - error deleting key: %v\n", name, err)
				}
			})

			printResult(name, timer)
		}

		seed := func(getKey func(int) string) {
			for i := 0; i < perfKeySpread; i++ {
				if err := st.set(getKey(i), value); err != nil {
					log.Printf("(seed) - error setting key: %v\n", err)
				}
			}
		}

		run("set", nil, func(st *store, key string) error {
			return st.set(key, value)
		})
		run("set-large", nil, func(st *store, key string) error {
			return st.set(key, largeValue)
		})
		run("get", seed, func(st *store, key string) error {
			_, err := st.get(key)
			return err
		})
		run("has", seed, func(st *store, key string) error {
			_, err := st.has(key)
			return err
		})
		run("del", seed, func(st *store, key string) error {
			_, err := st.del(key)
			return err
		})
		run("scan", seed, func(st *store, _ string) error {
			return st.scan("", "", func(string, string) (bool, error) { return true, nil })
		})
		counter := atomic.Int64{}
		run("mixed", seed, func(st *store, key string) error {
			var err error
			switch counter.Add(1) % 4 {
			case 0: // set
				err = st.set(key, value)
			case 1: // get
				_, err = st.get(key)
			case 2: // has
				_, err = st.has(key)
			case 3: // del
				_, err = st.del(key)
			}
			if errors.Is(err, dict.ErrKeyNotFound) {
				// a get racing a delete on the same key is expected here
				err = nil
			}
			return err
		})

		// Write results to csv if specified
		if csvPath := viper.GetString("csv"); csvPath != "" {
			fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
			if err := writeResultsToCSV(csvPath, results); err != nil {
				return fmt.Errorf("failed to export results to CSV: %v", err)
			}
			fmt.Println("Export complete")
		}

		return nil
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// getKeys creates an array of test keys and functions to work with them.
// Keys are plain decimal numbers so they parse under every key type.
func getKeys(prefix string) (func(int) string, func(func(string))) {
	base := 100_000_000
	for _, c := range prefix {
		base += int(c) * 1000
	}

	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = strconv.Itoa(base + i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer gometrics.Timer) {
	snap := timer.Snapshot()
	if snap.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
	opsPerSec := 1e9 / snap.Mean()

	fmt.Printf("%-20smean=%-12s p50=%-12s p95=%-12s p99=%-12s %.0f ops/sec\n",
		test,
		time.Duration(snap.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
		opsPerSec,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]gometrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P50Ns", "P95Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Engine", "KeyType", "Threads", "LargeValueSizeKB", "KeysCount",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, timer := range results {
		snap := timer.Snapshot()

		var mean float64
		var ps []float64
		var opsPerSec float64
		skipped := snap.Count() == 0
		if skipped {
			ps = []float64{0, 0, 0}
		} else {
			mean = snap.Mean()
			ps = snap.Percentiles([]float64{0.5, 0.95, 0.99})
			opsPerSec = 1e9 / mean
		}

		row := []string{
			test,
			strconv.FormatInt(snap.Count(), 10),
			fmt.Sprintf("%.0f", mean),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatBool(skipped),
			viper.GetString("engine"),
			viper.GetString("key-type"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
