// Package logger provides structured logging for the reactive library
// using zerolog.
//
// The library is quiet by default: the global logger is built from the
// REACTIVE_LOG_* environment variables at warn level. Applications either
// call Init with their own Config or Register a logger per component
// ("engine", "inproc", ...).
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("inproc")
//	log.Debug("pipeline subscribed", logger.Fields(logger.FieldPipelineID, id))
package logger
