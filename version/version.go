package version

import "runtime/debug"

// Version is the version of storyboard. Overridden at release build time via ldflags.
var Version = "0.8.0"

// Revision is the VCS revision storyboard was built from.
var Revision = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return "unknown"
}()
