//go:build !linux && !windows && !darwin && !freebsd && !netbsd && !openbsd

package environment

import (
	"errors"
	"runtime"
	"strconv"
)

func osName() (string, error) { return runtime.GOOS, nil }

func is64Bit() bool { return strconv.IntSize == 64 }

func memory() (uint64, uint64, error) { return 0, 0, errors.ErrUnsupported }

func frameworkRelease() (int, bool, error) { return 0, false, errors.ErrUnsupported }

func uiLanguage(getenv func(string) string) (string, error) { return envLanguage(getenv) }
