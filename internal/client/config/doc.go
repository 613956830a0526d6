// Package config loads runtime configuration for the worklogger CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. WORKLOGGER_* environment variables, after loading a .env file given
//     with -e/-env or found in the working directory.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   local SQLite database path
//	-l int      recent entries window
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// Intervals accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_path": "worklogger.db",
//	  "export_dir": "exports",
//	  "recent_limit": 50,
//	  "request_timeout": "10s"
//	}
package config
