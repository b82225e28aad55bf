// Copyright 2024 The Browserbench Authors. All rights reserved.
// Use of this source code is governed by a GPL-style
// license that can be found in the LICENSE file.

// Aggregates metric values across iterations and writes the report.

package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// errorSuffix marks a metric carrying the error of another metric.
	errorSuffix = "#error"
	// keySeparator separates a metric from its key in recorded names.
	keySeparator = "@"
	totalSuffix  = "_Total"
)

var ErrDuplicateError = errors.New("error already recorded for metric")

type index struct {
	metric  string
	key     string
	browser string
	version string
}

func (i index) name() string {
	if i.key == "" {
		return i.metric
	}

	return i.metric + "_" + i.key
}

// Map holds the values recorded for every metric, key, browser and version.
type Map struct {
	values map[index][]float64
	errors map[index]float64
}

func NewMap() *Map {
	return &Map{
		values: map[index][]float64{},
		errors: map[index]float64{},
	}
}

// JoinMetric builds the recorded name of a keyed metric.
func JoinMetric(metric, key string) string {
	if key == "" {
		return metric
	}

	return metric + keySeparator + key
}

// SplitMetric is the inverse of JoinMetric.
func SplitMetric(name string) (string, string) {
	metric, key, _ := strings.Cut(name, keySeparator)
	return metric, key
}

// Add records a value. A metric whose name ends with #error records the
// error of the base metric instead, once per metric.
func (m *Map) Add(browser, version, metric, key string, value float64) error {
	if base, ok := strings.CutSuffix(metric, errorSuffix); ok {
		i := index{metric: base, key: key, browser: browser, version: version}
		if _, exists := m.errors[i]; exists {
			return fmt.Errorf("%w %s", ErrDuplicateError, i.name())
		}
		m.errors[i] = value

		return nil
	}

	i := index{metric: metric, key: key, browser: browser, version: version}
	m.values[i] = append(m.values[i], value)

	return nil
}

// AddAll records every metric of one iteration.
func (m *Map) AddAll(browser, version string, metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		metric, key := SplitMetric(name)
		if err := m.Add(browser, version, metric, key, metrics[name]); err != nil {
			return err
		}
	}

	return nil
}

// Values returns the values recorded for a metric.
func (m *Map) Values(browser, version, metric, key string) []float64 {
	return slices.Clone(m.values[index{metric: metric, key: key, browser: browser, version: version}])
}

// CalcTotals rebuilds the <metric>_Total values of every keyed metric by
// summing, per iteration, the values of all its keys.
func (m *Map) CalcTotals() {
	keys := map[string]struct{}{}
	totals := map[index]struct{}{}

	for i := range m.values {
		if strings.HasSuffix(i.metric, totalSuffix) {
			delete(m.values, i)
			continue
		}

		if i.key != "" {
			keys[i.key] = struct{}{}
			totals[index{metric: i.metric, browser: i.browser, version: i.version}] = struct{}{}
		}
	}

	for t := range totals {
		total := []float64{}

		for key := range keys {
			current, ok := m.values[index{metric: t.metric, key: key, browser: t.browser, version: t.version}]
			if !ok {
				continue
			}

			for i, value := range current {
				if i >= len(total) {
					total = append(total, 0)
				}
				total[i] += value
			}
		}

		m.values[index{metric: t.metric + totalSuffix, browser: t.browser, version: t.version}] = total
	}
}

func (m *Map) sortedIndexes() []index {
	indexes := make([]index, 0, len(m.values))
	for i := range m.values {
		indexes = append(indexes, i)
	}

	sort.Slice(indexes, func(a, b int) bool {
		x, y := indexes[a], indexes[b]
		if x.name() != y.name() {
			return x.name() < y.name()
		}
		if x.browser != y.browser {
			return x.browser < y.browser
		}

		return x.version < y.version
	})

	return indexes
}

// WriteCSV computes the totals and writes one row per metric with its mean,
// standard deviation, relative standard deviation and raw values.
func (m *Map) WriteCSV(w io.Writer) error {
	m.CalcTotals()

	writer := csv.NewWriter(w)
	header := []string{"metric", "browser", "version", "avg", "stdev", "stdev%", "", "raw_values.."}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, i := range m.sortedIndexes() {
		values := m.values[i]
		avg := mean(values)

		stdev, ok := m.errors[i]
		if !ok {
			stdev = stddev(values, avg)
		}

		var relative float64
		if avg > 0 {
			relative = stdev / avg
		}

		row := []string{i.name(), i.browser, i.version, format(avg), format(stdev), format(relative), ""}
		for _, value := range values {
			row = append(row, format(value))
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write report row %s: %w", i.name(), err)
		}
	}
	writer.Flush()

	return writer.Error()
}

func format(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// stddev is the sample standard deviation, zero for a single value.
func stddev(values []float64, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += (value - avg) * (value - avg)
	}

	return math.Sqrt(sum / float64(len(values)-1))
}
