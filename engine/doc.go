// Package engine defines the contract between stream graphs and the code
// that runs them, and resolves the process-wide default engine.
//
// Engines register a Factory from an init function, in the style of
// database/sql drivers:
//
//	import _ "github.com/kbukum/reactive/engine/inproc"
//
// The first terminal operation that needs an engine calls Default, which
// picks the engine named in the configuration (REACTIVE_ENGINE_NAME or
// engine.name in reactive.yml) or else the only registered one. SetDefault
// and Reset exist for tests and for applications that wire engines
// explicitly.
package engine
