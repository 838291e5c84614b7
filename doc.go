// Package devframe provides device-resident columnar tables whose memory is
// owned by garbage-collected Go objects.
//
// Device memory is invisible to the Go collector. devframe accounts every
// device allocation against an external-memory controller, requests a
// collection when device usage grows, and frees each buffer exactly once:
// either through an explicit Release or through a cleanup once the owning
// object becomes unreachable.
//
// # Quick Start
//
//	ctx := context.Background()
//	s := devframe.New(devframe.WithMemoryLimit(1 << 30))
//
//	keys, _ := devframe.FromSlice(ctx, s, []int64{3, 1, 2, 0}, []bool{true, true, true, false})
//	vals, _ := devframe.FromSlice(ctx, s, []float64{0.3, 0.1, 0.2, 0.0}, nil)
//	t, _ := s.NewTable(table.FromColumns(keys, vals))
//
//	perm, _ := t.OrderBy(ctx, []bool{true, true}, []bool{true, true})
//	sorted, _ := t.Gather(ctx, perm)
//	_ = sorted.WriteCSV(ctx, os.Stdout, compute.CSVOptions{Header: true})
//
// # Packages
//
//   - device: device buffers, runtimes and memory accounting
//   - column: owning columns with optional null masks
//   - view: non-owning column and table views
//   - table: tables and the operations forwarded to the compute engine
//   - compute: sort, gather, scatter, drop-nulls, CSV and Arrow
//   - metrics: observers for allocation, transfer and table events
//
// # Configuration
//
// LoadConfig reads a configuration file and DEVFRAME_* environment
// variables:
//
//	cfg, _ := devframe.LoadConfig("devframe.yaml")
//	s, _ := devframe.NewFromConfig(cfg)
package devframe
