package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	appURL         = "https://github.com/babarot/rim"
	appDescription = "a recycle bin for the command line"
)

// Version carries the values stamped in at build time
type Version struct {
	AppName   string
	Version   string
	Revision  string
	BuildDate string
}

// resolve fills unset fields from the module build info, which is all that
// is available for binaries built with go install
func (v Version) resolve() Version {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	switch v.Version {
	case "", "unset", "unknown", "develop":
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Revision == "":
			v.Revision = s.Value
		case s.Key == "vcs.time" && v.BuildDate == "":
			v.BuildDate = s.Value
		}
	}
	return v
}

func (v Version) Print() string {
	v = v.resolve()
	var s strings.Builder
	fmt.Fprintf(&s, "%s - %s\n", v.AppName, appDescription)
	fmt.Fprintf(&s, "%s\n\n", appURL)
	for _, kv := range [][2]string{
		{"version", v.Version},
		{"revision", v.Revision},
		{"buildDate", v.BuildDate},
		{"go", runtime.Version()},
	} {
		fmt.Fprintf(&s, "%s: %s\n", kv[0], kv[1])
	}
	return s.String()
}
