package crm

import (
	"net/url"
	"strings"
)

// Script paths served under /support/api/<version>/
const (
	ClassicScript   = "interaction.js"
	LightningScript = "lightning/opencti_min.js"
)

var hostedSuffixes = []string{
	".salesforce.com",
	".force.com",
}

// IsHosted reports whether origin belongs to the CRM product. An empty
// origin means the desktop was opened top-level.
func IsHosted(origin string) bool {
	host, ok := originHost(origin)
	if !ok {
		return false
	}
	for _, suffix := range hostedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// IsLightning reports whether origin is the lightning variant of the CRM.
func IsLightning(origin string) bool {
	host, ok := originHost(origin)
	if !ok {
		return false
	}
	return strings.HasSuffix(host, ".lightning.force.com")
}

// ScriptName picks the toolkit script for the product variant behind origin.
func ScriptName(origin string) string {
	if IsLightning(origin) {
		return LightningScript
	}
	return ClassicScript
}

// LoadURL builds the toolkit script URL for origin and API version.
func LoadURL(origin, apiVersion string) string {
	return strings.TrimRight(origin, "/") + "/support/api/" + apiVersion + "/" + ScriptName(origin)
}

func originHost(origin string) (string, bool) {
	if origin == "" {
		return "", false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "https" || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}
