// Package models defines the data exchanged between the pdf-txt components:
// page classifications, OCR detections and per-run statistics.
//
// Every type here is a plain value. RunStats is the only mutable one and is
// safe for concurrent use.
package models
