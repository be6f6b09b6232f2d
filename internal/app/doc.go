// Package app wires the attendance analysis server together: configuration,
// logging, telemetry, services, router and the HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, KINTAI_* environment)
//	2. Resolve paths and initialize the global logger
//	3. Initialize OpenTelemetry and the analysis metrics
//	4. Create the analysis, report and health services
//	5. Build the chi router and its middleware chain
//	6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    slog.Error("Failed to initialize application", slog.String("error", err.Error()))
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// Tests and embedders that already hold a configuration use New and drive
// the server through Start and Stop.
//
// # Graceful Shutdown
//
// Run serves until SIGINT or SIGTERM. Stop drains in-flight requests within
// Server.ShutdownTimeout and then flushes the trace and metric providers.
package app
