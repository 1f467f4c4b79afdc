/*
edbx - Exchange EDB extraction and PST synthesis toolkit.
Copyright © 2024 edbx contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <https://www.gnu.org/licenses/>.
*/

// Package metrics exposes counters for the extraction/synthesis
// pipeline via prometheus/client_golang, registered next to the types
// that increment them and served over the optional /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DecompressionVariant = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edbx",
		Subsystem: "decompress",
		Name:      "variant_total",
		Help:      "Column decompression operations, by LZXPRESS/ESE variant tag",
	}, []string{"variant"})
	PropertyBlobFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edbx",
		Subsystem: "propblob",
		Name:      "parse_failures_total",
		Help:      "PropertyBlob/RecipientList parse attempts that found no usable fields",
	}, []string{"table"})
	PSTBlocksWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edbx",
		Subsystem: "pst",
		Name:      "blocks_written_total",
		Help:      "NDB blocks written to the output PST file",
	}, []string{"mailbox"})
	PSTBytesAllocated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edbx",
		Subsystem: "pst",
		Name:      "amap_bytes_allocated_total",
		Help:      "Bytes marked allocated in the Allocation Map",
	}, []string{"mailbox"})
	RecordsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edbx",
		Subsystem: "extract",
		Name:      "records_failed_total",
		Help:      "Rows that failed assembly into an entity, by error kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(DecompressionVariant,
		PropertyBlobFailures,
		PSTBlocksWritten,
		PSTBytesAllocated,
		RecordsFailed)
}
