package environment

import (
	"os"
	"runtime"
)

type systemHost struct {
	getenv func(string) string
}

// NewSystemHost reads facts from the running machine.
func NewSystemHost() Host {
	return systemHost{getenv: os.Getenv}
}

func (systemHost) Platform() string { return runtime.GOOS + "/" + runtime.GOARCH }

func (systemHost) RuntimeVersion() string { return runtime.Version() }

func (h systemHost) OSName() (string, error) { return osName() }

func (h systemHost) Is64Bit() bool { return is64Bit() }

func (h systemHost) Memory() (uint64, uint64, error) { return memory() }

func (h systemHost) FrameworkRelease() (int, bool, error) { return frameworkRelease() }

func (h systemHost) UILanguage() (string, error) { return uiLanguage(h.getenv) }
