// Package testutil provides deterministic clocks and store fixtures shared
// by package tests.
package testutil
