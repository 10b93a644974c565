package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	menuNameRe      = regexp.MustCompile(`^L1Menu_\w+-d[0-9]{1,2}$`)
	xmlNameRe       = regexp.MustCompile(`^L1Menu_\w+`)
	buildTagRe      = regexp.MustCompile(`^0x[A-Fa-f0-9]{4}$`)
	vivadoVersionRe = regexp.MustCompile(`^\d{4}\.\d$`)
	questaVersionRe = regexp.MustCompile(`^\d+\.\d[a-z0-9_]{0,3}$`)
	ipbbVersionRe   = regexp.MustCompile(`^\d\.\d\.\d+$`)
)

// ParseBuildTag validates a firmware build tag of the form 0x1160 and
// returns it normalized to four lower-case hex digits without prefix.
func ParseBuildTag(value string) (string, error) {
	if !buildTagRe.MatchString(value) {
		return "", fmt.Errorf("not a valid build tag: %q (expected e.g. 0x1160)", value)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(value, "0x"), 16, 16)
	if err != nil {
		return "", fmt.Errorf("not a valid build tag: %q: %w", value, err)
	}
	return fmt.Sprintf("%04x", n), nil
}

// ValidateMenuName checks a full menu name with distribution suffix
// (e.g. L1Menu_Collisions2025_v1_0_0-d1)
func ValidateMenuName(name string) error {
	if !menuNameRe.MatchString(name) {
		return fmt.Errorf("not a valid menu name: %q", name)
	}
	return nil
}

// ValidateXMLName checks a menu name tag as found inside the XML document
func ValidateXMLName(name string) error {
	if !xmlNameRe.MatchString(name) {
		return fmt.Errorf("not a valid menu name tag: %q", name)
	}
	return nil
}

// ValidateVivadoVersion checks a Xilinx Vivado version number (e.g. 2021.2)
func ValidateVivadoVersion(version string) error {
	if !vivadoVersionRe.MatchString(version) {
		return fmt.Errorf("not a Xilinx Vivado version: %q", version)
	}
	return nil
}

// ValidateQuestaVersion checks a QuestaSim version number (e.g. 10.7c)
func ValidateQuestaVersion(version string) error {
	if !questaVersionRe.MatchString(version) {
		return fmt.Errorf("not a QuestaSim version: %q", version)
	}
	return nil
}

// ValidateIPBBVersion checks an IPBB version number (e.g. 0.5.2)
func ValidateIPBBVersion(version string) error {
	if !ipbbVersionRe.MatchString(version) {
		return fmt.Errorf("not a valid IPBB version: %q", version)
	}
	return nil
}
