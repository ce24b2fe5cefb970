// Package cpi holds the consumer price index domain model: calendar months,
// monthly series with their integrity checks, and the output table with its
// optional purchasing-power indexing.
package cpi
