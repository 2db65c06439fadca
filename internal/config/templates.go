package config

import (
	"fmt"
	"os"
)

func Template() string {
	return fileTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template()), 0o600)
}

const fileTemplate = `# per-exchange bound covering dial, request, and full response
timeout = "31s"
agent = "fileget"
output_dir = "."
max_body_bytes = 1073741824
max_line_bytes = 1024
log_level = "info"
# Prometheus textfile written after each run when set
metrics_file = ""
summary = false
`
