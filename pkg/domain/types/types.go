package types

// ServiceName is used in health responses and Sentry tags
const ServiceName = "skillsync"

// Version is embedded at build time via -ldflags
var Version = "dev"
