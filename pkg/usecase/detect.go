package usecase

import (
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"
)

// jsFrameworkTable maps package.json dependency keys to canonical skill
// names. Keys are matched case-sensitively, as npm package names are.
var jsFrameworkTable = map[string]string{
	"react":        "React",
	"next":         "Next.js",
	"vue":          "Vue.js",
	"nuxt":         "Nuxt",
	"@angular/core": "Angular",
	"svelte":       "Svelte",
	"express":      "Express",
	"fastify":      "Fastify",
	"@nestjs/core": "NestJS",
	"tailwindcss":  "Tailwind CSS",
	"gatsby":       "Gatsby",
	"electron":     "Electron",
}

// pythonLibraryTable maps normalized requirements.txt package names to
// canonical skill names. Lookup keys use hyphens; underscore spellings
// are normalized before matching.
var pythonLibraryTable = map[string]string{
	"django":       "Django",
	"flask":        "Flask",
	"fastapi":      "FastAPI",
	"pandas":       "pandas",
	"numpy":        "NumPy",
	"torch":        "PyTorch",
	"tensorflow":   "TensorFlow",
	"scikit-learn": "scikit-learn",
	"sqlalchemy":   "SQLAlchemy",
	"celery":       "Celery",
	"streamlit":    "Streamlit",
}

var testPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)tests?/`),
	regexp.MustCompile(`(^|/)__tests__/`),
	regexp.MustCompile(`(^|/)spec/`),
	regexp.MustCompile(`_test\.go$`),
	regexp.MustCompile(`\.(test|spec)\.[jt]sx?$`),
	regexp.MustCompile(`(^|/)test_[^/]+\.py$`),
	regexp.MustCompile(`(^|/)(pytest\.ini|tox\.ini|jest\.config\.[jt]s|vitest\.config\.[jt]s|karma\.conf\.js)$`),
}

// deploymentFiles are matched against the lowercased path basename
var deploymentFiles = map[string]bool{
	"dockerfile":         true,
	"docker-compose.yml": true,
	"docker-compose.yaml": true,
	"procfile":           true,
	"app.yaml":           true,
	"vercel.json":        true,
	"netlify.toml":       true,
	"fly.toml":           true,
	"render.yaml":        true,
	"serverless.yml":     true,
	"heroku.yml":         true,
}

var deployWorkflowPattern = regexp.MustCompile(`^\.github/workflows/[^/]*deploy[^/]*\.ya?ml$`)

// liveDemoHosts are hosting-provider domains that indicate a deployed
// application when linked from a README
var liveDemoHosts = []string{
	".vercel.app",
	".netlify.app",
	".herokuapp.com",
	".github.io",
	".fly.dev",
	".onrender.com",
	".railway.app",
	".pages.dev",
}

var (
	markdownDemoLink = regexp.MustCompile(`(?i)\[[^\]]*(live|demo|try it|production)[^\]]*\]\((https?://[^)\s]+)\)`)
	urlPattern       = regexp.MustCompile(`https?://[A-Za-z0-9._~:/?#@!$&'*+,;=%()-]+`)
)

// detectJSFrameworks parses a package.json manifest and matches its
// dependency keys against the framework table
func detectJSFrameworks(manifest string) []string {
	var parsed struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(manifest), &parsed); err != nil {
		return nil
	}

	var found []string
	seen := map[string]bool{}
	for _, deps := range []map[string]string{parsed.Dependencies, parsed.DevDependencies} {
		// Deterministic order for stable output
		keys := make([]string, 0, len(deps))
		for k := range deps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if name, ok := jsFrameworkTable[k]; ok && !seen[name] {
				seen[name] = true
				found = append(found, name)
			}
		}
	}
	return found
}

// detectPythonLibraries parses a requirements.txt line by line and
// matches package names against the library table
func detectPythonLibraries(requirements string) []string {
	var found []string
	seen := map[string]bool{}

	for _, line := range strings.Split(requirements, "\n") {
		name := requirementName(line)
		if name == "" {
			continue
		}
		if skill, ok := pythonLibraryTable[name]; ok && !seen[skill] {
			seen[skill] = true
			found = append(found, skill)
		}
	}
	return found
}

// requirementName extracts the normalized package name from one
// requirements.txt line: lowercased, underscores folded to hyphens,
// version specifiers and extras stripped
func requirementName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return ""
	}
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", ";", " ", "["} {
		if idx := strings.Index(line, sep); idx >= 0 {
			line = line[:idx]
		}
	}
	return strings.ReplaceAll(strings.ToLower(line), "_", "-")
}

// detectTestMarkers reports whether any tree path matches a known test
// pattern. A single match is sufficient.
func detectTestMarkers(paths []string) bool {
	for _, p := range paths {
		lower := strings.ToLower(p)
		for _, re := range testPathPatterns {
			if re.MatchString(lower) {
				return true
			}
		}
	}
	return false
}

// detectDeploymentMarkers reports whether the tree carries a known
// containerization, PaaS, or deploy-workflow file
func detectDeploymentMarkers(paths []string) bool {
	for _, p := range paths {
		lower := strings.ToLower(p)
		if deploymentFiles[path.Base(lower)] {
			return true
		}
		if deployWorkflowPattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// detectLiveDemoURL scans README content for a deployed-application
// URL: an explicit demo/live markdown link first, then any URL on a
// known hosting-provider domain
func detectLiveDemoURL(readme string) string {
	if m := markdownDemoLink.FindStringSubmatch(readme); m != nil {
		return m[2]
	}
	for _, u := range urlPattern.FindAllString(readme, -1) {
		u = strings.TrimRight(u, ").,")
		for _, host := range liveDemoHosts {
			if hostMatches(u, host) {
				return u
			}
		}
	}
	return ""
}

func hostMatches(url, hostSuffix string) bool {
	rest := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	host := rest
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		host = rest[:idx]
	}
	return strings.HasSuffix(host, hostSuffix)
}

// findReadmePath returns the shallowest README-like file in the tree,
// matched case-insensitively, or "" when none exists
func findReadmePath(paths []string) string {
	best := ""
	for _, p := range paths {
		base := strings.ToLower(path.Base(p))
		switch base {
		case "readme.md", "readme.txt", "readme.rst":
			if best == "" || strings.Count(p, "/") < strings.Count(best, "/") {
				best = p
			}
		}
	}
	return best
}

// findManifestPath returns the shallowest occurrence of a manifest file
// name in the tree, or "" when absent
func findManifestPath(paths []string, name string) string {
	best := ""
	for _, p := range paths {
		if path.Base(p) == name {
			if best == "" || strings.Count(p, "/") < strings.Count(best, "/") {
				best = p
			}
		}
	}
	return best
}
