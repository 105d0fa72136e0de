// Package promptutil provides pure text transformations shared by the
// provider adapters: dynamic-variable interpolation and rewriting of
// declarative evaluation criteria into judge questions.
package promptutil

import "regexp"

// Variable references come in three interchangeable syntaxes: ${VAR}, {VAR}
// and {{VAR}}. The {{VAR}} alternative is listed before {VAR} so a
// double-braced reference is consumed whole and never substituted twice.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}|\{\{([A-Za-z0-9_]+)\}\}|\{([A-Za-z0-9_]+)\}`)

// Interpolate substitutes dynamic-variable references in text. All three
// reference syntaxes are handled in a single pass, so substituted values are
// never re-scanned. References to variables that are not in vars are left
// intact.
func Interpolate(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}

	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		if name == "" {
			name = groups[3]
		}
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}
