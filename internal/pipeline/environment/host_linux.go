//go:build linux

package environment

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func osName() (string, error) {
	var un unix.Utsname
	if err := unix.Uname(&un); err != nil {
		return "", err
	}
	release := unix.ByteSliceToString(un.Release[:])

	pretty := osReleaseName("/etc/os-release")
	if pretty == "" {
		pretty = unix.ByteSliceToString(un.Sysname[:])
	}
	return pretty + " (kernel " + release + ")", nil
}

func osReleaseName(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var name, version string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		v = strings.Trim(v, `"'`)
		switch k {
		case "PRETTY_NAME":
			return v
		case "NAME":
			name = v
		case "VERSION_ID":
			version = v
		}
	}
	return strings.TrimSpace(name + " " + version)
}

func is64Bit() bool {
	var un unix.Utsname
	if err := unix.Uname(&un); err != nil {
		return strconv.IntSize == 64
	}
	return strings.Contains(unix.ByteSliceToString(un.Machine[:]), "64")
}

func memory() (uint64, uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, err
	}
	unit := uint64(info.Unit)
	total := uint64(info.Totalram) * unit
	avail := uint64(info.Freeram) * unit
	if v, ok := memAvailable("/proc/meminfo"); ok {
		avail = v
	}
	return total, avail, nil
}

// memAvailable reads MemAvailable, which unlike Freeram counts reclaimable
// page cache.
func memAvailable(path string) (uint64, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != "MemAvailable:" {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * 1024, true
	}
	return 0, false
}

func frameworkRelease() (int, bool, error) { return 0, false, errors.ErrUnsupported }

func uiLanguage(getenv func(string) string) (string, error) { return envLanguage(getenv) }
