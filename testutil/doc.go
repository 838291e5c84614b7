// Package testutil provides testing utilities for devframe.
//
// This package is intended for use in tests only. It provides a seeded
// random generator for column data and validity flags, and devices with
// private memory accounting so tests can assert exact byte counts.
//
// # Random Column Data
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Int64s(1000, -50, 50) // duplicates exercise stability
//	valid := rng.Validity(1000, 0.1)  // ~10% nulls
//
// # Devices
//
//	dev, rc := testutil.NewDevice()
//	// ... allocate ...
//	require.Zero(t, rc.MemoryUsage())
package testutil
