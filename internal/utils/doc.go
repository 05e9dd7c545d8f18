// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the novaeco
// CLI, together with small context and writer helpers shared by commands.
package utils
