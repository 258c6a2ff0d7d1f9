// Package config loads application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// an optional `.env` file is applied first, then the process environment is
// parsed into any struct using `env` and `envDefault` field tags.
//
//	type Config struct {
//		HTTP   httpserver.Config
//		Binder modelbind.Config
//	}
//
//	func main() {
//		cfg := config.MustLoad[Config]()
//		srv := httpserver.NewFromConfig(cfg.HTTP)
//		mb, err := modelbind.NewFromConfig(cfg.Binder)
//		// ...
//	}
//
// Use WithEnvFiles to load specific files and WithPrefix to namespace
// variables. Failures wrap ErrParsingConfig or ErrLoadingEnvFile.
package config
