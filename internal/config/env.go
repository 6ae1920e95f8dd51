package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv substitutes environment references in raw YAML:
//
//	${VAR}           value of VAR, empty when unset
//	${VAR:-default}  default when VAR is unset or empty
//	${VAR:?message}  error when VAR is unset or empty
//
// All missing required variables are reported together.
func expandEnv(data []byte) ([]byte, error) {
	var missing []error
	out := envRef.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])

		if name, msg, ok := strings.Cut(expr, ":?"); ok {
			if v := os.Getenv(name); v != "" {
				return []byte(v)
			}
			if msg == "" {
				msg = "required"
			}
			missing = append(missing, fmt.Errorf("${%s}: %s", name, msg))
			return nil
		}

		name, def, hasDefault := strings.Cut(expr, ":-")
		v := os.Getenv(name)
		if v == "" && hasDefault {
			v = def
		}
		return []byte(v)
	})
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return out, nil
}
