package config

import (
	"os"
	"strings"
)

// LoadDotEnv copies KEY=VALUE lines from path into the process environment
// for keys that are not already set. A missing file is ignored.
func LoadDotEnv(path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i > 0 {
			k := strings.TrimSpace(line[:i])
			v := strings.Trim(strings.TrimSpace(line[i+1:]), `"'`)
			if _, exists := os.LookupEnv(k); !exists && k != "" {
				_ = os.Setenv(k, v)
			}
		}
	}
}
