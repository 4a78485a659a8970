package xamlai

// Release metadata shown by "xamlai version", the web form footer and the
// User-Agent of outgoing translation requests.
const (
	Name        = "xamlai"
	Description = "XAML string-resource translator powered by AI"
	Version     = "0.1.0"
	Repository  = "https://github.com/ZaguanLabs/xamlai"
	License     = "MIT"
)

// Stamped by release builds:
//
//	go build -ldflags "-X github.com/ZaguanLabs/xamlai.GitCommit=$(git rev-parse HEAD) \
//	  -X github.com/ZaguanLabs/xamlai.BuildDate=$(date -u +%FT%TZ)" ./cmd/xamlai
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion is Version with the short commit appended when the binary was
// stamped, e.g. "0.1.0+abc1234".
func FullVersion() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Version + "+" + commit
}

// UserAgent identifies xamlai to translation backends.
func UserAgent() string {
	return Name + "/" + Version
}
