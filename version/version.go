package version

// Version is overridden at build time with -ldflags "-X github.com/Daskott/helmetguard/version.Version=..."
var Version = "2.0.0"
