// Package config loads the application configuration.
//
// Values come from the environment, optionally seeded from a .env file, through Viper.
// Defaults are declared on the section structs with 'default' tags.
//
// # Sections
//
//   - Server: listen address, API key, shutdown bound
//   - Database: driver (mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials and bucket
//   - Log: level and format
//   - Binding: import backend (database, storage), object prefix, preview TTL, undo depth
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Binding.Backend)
package config
