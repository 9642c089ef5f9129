package env

import "os"

// Get reads key from the process environment, returning fallback when the
// variable is unset or empty. Structured configuration goes through envconfig
// with the FULLUPROAR_ prefix; this helper covers the few reads (log format)
// that happen before config has loaded.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
