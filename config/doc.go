// Package config loads the reactive library configuration.
//
// It uses Viper to read reactive.yml, godotenv to load .env files, and binds
// REACTIVE_ prefixed environment variables over file values, so
// REACTIVE_ENGINE_NAME=inproc selects the default engine.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logger.Init(&cfg.Logging)
//
// LoadConfig loads any struct with mapstructure tags using the same file
// resolution and environment binding rules.
package config
