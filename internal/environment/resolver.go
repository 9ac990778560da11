// Package environment classifies the execution context into a deployment
// environment and derives the default backend base URL for it.
package environment

import (
	"strings"

	"github.com/propmarket/apicore/internal/types/environments"
)

// HostContext is the capability surface the resolver reads instead of ambient
// globals. The composition root fills it in; tests construct it directly.
type HostContext struct {
	Hostname           string
	Port               string
	Protocol           string
	HasBrowsingContext bool
}

// devBaseURL is where the marketplace backend listens during local development.
const devBaseURL = "http://localhost:5000"

var localHostnames = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
}

// Ports commonly bound by front-end dev servers (CRA, Vite, dev proxies).
var devPorts = map[string]bool{
	"3000": true,
	"3001": true,
	"5173": true,
	"8080": true,
}

// Hosting platform domains, checked in order. First match wins.
var platformDomains = []struct {
	suffix string
	env    environments.Environment
}{
	{"fly.dev", environments.Fly},
	{"netlify.app", environments.Netlify},
	{"vercel.app", environments.Vercel},
	{"railway.app", environments.Railway},
	{"onrender.com", environments.Render},
	{"herokuapp.com", environments.Heroku},
}

// Resolve classifies the host context. It always returns a value; production
// is the default when no rule matches.
func Resolve(hc HostContext) environments.Environment {
	if !hc.HasBrowsingContext {
		return environments.Server
	}

	hostname := strings.ToLower(hc.Hostname)
	if localHostnames[hostname] || devPorts[hc.Port] {
		return environments.Development
	}

	for _, platform := range platformDomains {
		if strings.Contains(hostname, platform.suffix) {
			return platform.env
		}
	}

	return environments.Production
}

// BaseURL derives the backend base URL for an environment. A non-empty
// override replaces auto-detection entirely. Hosted environments return an
// empty base, meaning root-relative paths against the serving origin.
func BaseURL(env environments.Environment, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}

	switch env {
	case environments.Development, environments.Server:
		return devBaseURL
	default:
		return ""
	}
}
