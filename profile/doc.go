// Package profile provides optional runtime profiling for the aconf command.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op stopper, so callers never need their own
// build constraints.
//
// # Modes
//
// Built with the pprof tag, the following modes are supported:
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath("/tmp/prof"))
//	defer p.Start().Stop()
//
// From the command line:
//
//	go build -tags pprof .
//	./aconf --pprof-mode=cpu eval app.yaml
//	go tool pprof -http=: ~/.cache/aconf/pprof/cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
