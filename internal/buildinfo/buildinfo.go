// Package buildinfo derives the string shown by `revtrace --version` from
// the metadata the Go toolchain embeds in the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// shortRevisionLength matches the hash truncation the reports default to.
const shortRevisionLength = 8

// Describe returns the version string for --version: the module version when
// the binary was built from a tagged release, with the VCS revision it was
// built from appended when the toolchain recorded one.
func Describe() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	return describe(info)
}

func describe(info *debug.BuildInfo) string {
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	revision, modified := vcsState(info.Settings)
	if revision == "" {
		return version
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if modified {
		return fmt.Sprintf("%s (%s, modified)", version, revision)
	}
	return fmt.Sprintf("%s (%s)", version, revision)
}

func vcsState(settings []debug.BuildSetting) (revision string, modified bool) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return revision, modified
}
