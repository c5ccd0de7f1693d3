package cmd

// version is stamped at build time via -ldflags.
var version = "1.0.0"
