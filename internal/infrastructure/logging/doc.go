// Package logging provides structured logging using uber/zap.
//
// Production mode emits JSON; development mode emits colored console
// output at debug level. Subsystems derive named child loggers so log
// lines identify the registry, dispatchers, and transport separately.
package logging
