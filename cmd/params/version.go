package params

import "fmt"

const (
	VersionMajor = 0          // Major version component of the current release
	VersionMinor = 1          // Minor version component of the current release
	VersionPatch = 0          // Patch version component of the current release
	VersionMeta  = "unstable" // Version metadata to append to the version string
)

// GitCommit is set at build time with -ldflags "-X ...params.GitCommit=<sha>".
var GitCommit = ""

var Version = func() string {
	v := fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	if VersionMeta != "" {
		v += "-" + VersionMeta
	}
	return v
}()

func VersionWithCommit() string {
	if len(GitCommit) >= 8 {
		return Version + "-" + GitCommit[:8]
	}
	return Version
}
