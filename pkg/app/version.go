package app

import (
	"strings"

	"github.com/small-frappuccino/cafefarm/pkg/util"
)

// AppVersion is the version stamped into the binary.
func AppVersion() string {
	return util.AppVersion
}

// SetAppVersion overrides the version reported at startup.
func SetAppVersion(v string) {
	if v = strings.TrimSpace(v); v != "" {
		util.AppVersion = v
	}
}
