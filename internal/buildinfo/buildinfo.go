// Package buildinfo carries version data stamped in with -ldflags -X.
package buildinfo

const Graffiti = ` _       _
| | ____| |___ _ __   __ _  ___ ___
| |/ / _' / __| '_ \ / _' |/ __/ _ \
|   < (_| \__ \ |_) | (_| | (_|  __/
|_|\_\__,_|___/ .__/ \__,_|\___\___|
              |_|

`

var (
	BuildTag string = "v0.0.0"
	Name     string = "KDSPACE"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

// String renders the one-line version banner.
func (b buildinfo) String() string {
	if b.Time() == "" {
		return b.Name() + ": " + b.Tag()
	}
	return b.Name() + ": " + b.Time() + ", " + b.Tag()
}

var Info buildinfo
