package core

// Version is the library version string. It is the only process-wide
// state in the pipeline and is read-only.
const Version = "0.1.0"
