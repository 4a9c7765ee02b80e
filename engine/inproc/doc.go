// Package inproc is the reference engine. It runs graphs inside the current
// process and registers itself as "inproc" when imported:
//
//	import _ "github.com/kbukum/reactive/engine/inproc"
//
// A graph compiles into a chain of pull iterators from the pipeline package.
// Each subscription owns one chain and one goroutine that pulls from it only
// while the subscriber has outstanding demand, so stages compute lazily and
// signals reach the subscriber strictly one at a time. Cancelling a
// subscription closes the chain, which cancels every upstream stage.
//
// Publishers and processors supplied by the caller are read through a
// bridge that requests Config.Prefetch elements at a time and turns
// protocol violations, such as an element sent without demand, into
// CONTRACT_VIOLATION failures.
//
// Options are decoded from engine.options in the configuration:
//
//	engine:
//	  name: inproc
//	  options:
//	    prefetch: 32
package inproc
