//go:build darwin || freebsd || netbsd || openbsd

package environment

import (
	"errors"
	"runtime"
	"strconv"

	"golang.org/x/sys/unix"
)

func osName() (string, error) {
	var un unix.Utsname
	if err := unix.Uname(&un); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(un.Sysname[:]) + " " + unix.ByteSliceToString(un.Release[:]), nil
}

func is64Bit() bool {
	if v, err := unix.SysctlUint32("hw.cpu64bit_capable"); err == nil {
		return v == 1
	}
	return strconv.IntSize == 64
}

func memory() (uint64, uint64, error) {
	name := "hw.physmem"
	if runtime.GOOS == "darwin" {
		name = "hw.memsize"
	}
	total, err := unix.SysctlUint64(name)
	if err != nil {
		return 0, 0, err
	}
	// available memory has no portable sysctl
	return total, 0, nil
}

func frameworkRelease() (int, bool, error) { return 0, false, errors.ErrUnsupported }

func uiLanguage(getenv func(string) string) (string, error) { return envLanguage(getenv) }
