package version

// Set at build time:
//
//	go build -ldflags "-X LTSLab/internal/version.Version=1.2.0 -X LTSLab/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func String() string {
	return Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
