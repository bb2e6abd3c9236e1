// Package service provides reusable operations for script classification, language
// detection, passage analysis and corpus runs.
//
// This package is intended for embedding langprobe capabilities into other programs
// without shelling out to the CLI.
package service
