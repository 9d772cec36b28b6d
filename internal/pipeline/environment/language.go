package environment

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

var errNoLanguage = errors.New("no language configured")

// localeVars are consulted in POSIX precedence order.
var localeVars = []string{"LC_ALL", "LC_MESSAGES", "LANG", "LANGUAGE"}

func envLanguage(getenv func(string) string) (string, error) {
	for _, name := range localeVars {
		v := getenv(name)
		if name == "LANGUAGE" {
			// colon separated preference list
			v, _, _ = strings.Cut(v, ":")
		}
		if v != "" {
			return canonicalLanguage(v)
		}
	}
	return "", errNoLanguage
}

// canonicalLanguage turns POSIX locale names ("de_DE.UTF-8@euro") and
// Windows names ("de-DE") into a BCP 47 tag.
func canonicalLanguage(raw string) (string, error) {
	raw, _, _ = strings.Cut(raw, ".")
	raw, _, _ = strings.Cut(raw, "@")
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return "", errNoLanguage
	case "C", "POSIX":
		return language.Und.String(), nil
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
