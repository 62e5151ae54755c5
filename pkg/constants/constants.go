// Package constants holds values shared across the compiler and CLI.
package constants

// CLIExtensionPrefix is the binary name used in help text and generated
// file comments.
const CLIExtensionPrefix = "flowc"

// Working directory layout inside step containers. Input artifacts are
// materialized under WorkDirIn before the script runs; everything the step
// produces must land under WorkDirOut.
const (
	WorkDir    = "/workdir"
	WorkDirIn  = "/workdir/in"
	WorkDirOut = "/workdir/out"
)

// WorkDirVolume is the name of the shared volume mounted at WorkDir.
const WorkDirVolume = "workdir"

// InitImage is the image used by the init containers that prepare the
// working directory.
const InitImage = "alpine:latest"

// ScriptCommand is the interpreter invoked on the embedded step source.
var ScriptCommand = []string{"node"}

// Default resource envelope applied to every step container.
const (
	DefaultMemory = "30Mi"
	DefaultCPU    = "20m"
)

// S3Endpoint is the object-storage endpoint written into permanent output
// artifacts.
const S3Endpoint = "s3.amazonaws.com"

// GenerateNamePrefix prefixes the manifest's generateName.
const GenerateNamePrefix = "flowc-"
