package vfs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	filesystemPrometheusMetrics sync.Once

	filesystemBlocksAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "blocks_allocated_total",
			Help:      "Number of storage blocks added to the chain of a file.",
		})
	filesystemBlocksFreed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "blocks_freed_total",
			Help:      "Number of storage blocks released by deleting files.",
		})
	filesystemAllocationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "allocation_failures_total",
			Help:      "Number of times a block or directory entry could not be allocated.",
		},
		[]string{"resource"})
	filesystemBytesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "bytes_read_total",
			Help:      "Number of bytes transferred out of files.",
		})
	filesystemBytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "bytes_written_total",
			Help:      "Number of bytes transferred into files.",
		})
	filesystemFilesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "files_created_total",
			Help:      "Number of files created.",
		})
	filesystemFilesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kiv_tfs",
			Subsystem: "vfs",
			Name:      "files_deleted_total",
			Help:      "Number of files deleted.",
		})
)

func registerMetrics() {
	filesystemPrometheusMetrics.Do(func() {
		prometheus.MustRegister(filesystemBlocksAllocated)
		prometheus.MustRegister(filesystemBlocksFreed)
		prometheus.MustRegister(filesystemAllocationFailures)
		prometheus.MustRegister(filesystemBytesRead)
		prometheus.MustRegister(filesystemBytesWritten)
		prometheus.MustRegister(filesystemFilesCreated)
		prometheus.MustRegister(filesystemFilesDeleted)
	})
}

