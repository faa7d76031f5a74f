package config

// Version is the configuration file format version this build supports.
// Config files with the same major version and an equal or lower version
// are accepted.
const Version = "0.1.0"

// ServerVersion is the reported build version of the trust service.
const ServerVersion = "0.1.0"
