// Package config provides configuration management for the cover manager.
//
// It loads an optional .env file with godotenv, then reads environment
// variables through Viper. Defaults come from the `default` struct tags of
// each section, keys from the `mapstructure` tags (SECTION_KEY maps to
// section.key).
//
// # Configuration Structure
//
//   - Server: port, API key, discovery view link template
//   - Catalog, Resolver, Loader: upstream service endpoints
//   - Auth: bearer token or JWT signing secret for writes
//   - Retry: retry count and delay for reads
//   - Schema: MARC tags and subfields holding identifiers and covers
//   - Storage: MinIO staging bucket
//   - Database: optional history database
//   - Log: logging level and format
//
// Base URLs are normalized to end with a slash, then the whole structure is
// checked with the validator `validate` tags.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
