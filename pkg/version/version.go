package version

// Current defines the application version.
// It defaults to "dev" and is overwritten with -ldflags at release time.
var Current = "dev"

const AppName = "routeviz"

// UserAgent identifies outgoing requests.
func UserAgent() string {
	return AppName + "/" + Current
}
