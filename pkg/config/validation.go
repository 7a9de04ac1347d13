package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the rules that span sections.
// It expects defaults to have been applied.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry: endpoint is required when tracing is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("telemetry.profiling: endpoint is required when profiling is enabled")
	}

	if cfg.Metrics.Enabled && !cfg.API.IsEnabled() {
		return errors.New("metrics: the api server must be enabled to expose /metrics")
	}

	if cfg.API.IsEnabled() && cfg.API.Port == cfg.Server.Port && sameBind(cfg.API.BindAddress, cfg.Server.BindAddress) {
		return fmt.Errorf("api: port %d is already used by the directory server", cfg.API.Port)
	}

	return nil
}

// sameBind reports whether two listeners on the same port would collide.
// An empty address binds every interface.
func sameBind(a, b string) bool {
	return a == "" || b == "" || a == b
}

// formatValidationError turns validator errors into "Field.Path: rule"
// lines that name the offending config key.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
