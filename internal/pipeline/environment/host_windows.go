//go:build windows

package environment

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`
	frameworkKey      = `SOFTWARE\Microsoft\NET Framework Setup\NDP\v4\Full`
)

func osName() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	product, _, err := k.GetStringValue("ProductName")
	if err != nil {
		return "", err
	}
	if build, _, err := k.GetStringValue("CurrentBuild"); err == nil && build != "" {
		return fmt.Sprintf("%s (build %s)", product, build), nil
	}
	return product, nil
}

func is64Bit() bool {
	if strconv.IntSize == 64 {
		return true
	}
	var wow64 bool
	if err := windows.IsWow64Process(windows.CurrentProcess(), &wow64); err != nil {
		return false
	}
	return wow64
}

func memory() (uint64, uint64, error) {
	var st windows.MemoryStatusEx
	st.Length = uint32(unsafe.Sizeof(st))
	if err := windows.GlobalMemoryStatusEx(&st); err != nil {
		return 0, 0, err
	}
	return st.TotalPhys, st.AvailPhys, nil
}

// frameworkRelease reads the 32-bit registry view, where the framework
// installer records its release code on every architecture.
func frameworkRelease() (int, bool, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, frameworkKey, registry.QUERY_VALUE|registry.WOW64_32KEY)
	if errors.Is(err, registry.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("Release")
	if errors.Is(err, registry.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int(v), true, nil
}

func uiLanguage(getenv func(string) string) (string, error) {
	langs, err := windows.GetUserPreferredUILanguages(windows.MUI_LANGUAGE_NAME)
	if err == nil && len(langs) > 0 {
		return canonicalLanguage(langs[0])
	}
	return envLanguage(getenv)
}
