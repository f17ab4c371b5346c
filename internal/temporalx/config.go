package temporalx

import (
	"strings"

	"github.com/yungbote/transfermarket-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string
}

func LoadConfig() Config {
	return Config{
		Address:   strings.TrimSpace(envutil.String("TEMPORAL_ADDRESS", "")),
		Namespace: stringsOr(envutil.String("TEMPORAL_NAMESPACE", ""), "transfermarket"),
		TaskQueue: stringsOr(envutil.String("TEMPORAL_TASK_QUEUE", ""), "transfermarket"),

		ClientCertPath: strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CERT_PATH", "")),
		ClientKeyPath:  strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_KEY_PATH", "")),
		ClientCAPath:   strings.TrimSpace(envutil.String("TEMPORAL_CLIENT_CA_PATH", "")),
	}
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Address) != ""
}

func (c Config) UsesTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
