package version

// Name is the service identifier used for telemetry and logging.
const Name = "inkwell"

// Version is overridden at build time via ldflags.
var Version = "dev"
