package config

// Version is the dietinsights binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/dietinsights/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
