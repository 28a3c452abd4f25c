package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ssmParamSuffix marks pointer variables: OWM_API_KEY_SSM_PARAM=/prod/owm/key
// resolves into OWM_API_KEY.
const ssmParamSuffix = "_SSM_PARAM"

// localEnv is the APP_ENV value that skips SSM resolution.
const localEnv = "local"

const ssmResolveTimeout = 10 * time.Second

// environment is the process environment seen by the loader. Tests swap in
// a map-backed one.
type environment interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Environ() []string
}

type osEnvironment struct{}

func (osEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (osEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

func (osEnvironment) Environ() []string {
	return os.Environ()
}

// Load reads .env (if present), resolves *_SSM_PARAM pointers through
// provider outside of APP_ENV=local, then populates and validates Config.
// provider may be nil when no pointers are set.
func Load(provider SecretProvider) (*Config, error) {
	_ = godotenv.Load()
	return load(provider, osEnvironment{})
}

func load(provider SecretProvider, env environment) (*Config, error) {
	time.Local = time.UTC

	if appEnv, _ := env.LookupEnv("APP_ENV"); appEnv != localEnv {
		if err := resolveSecretRefs(provider, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "failed to process environment", Err: err}
	}
	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	return &cfg, nil
}

// resolveSecretRefs fetches every *_SSM_PARAM pointer whose target variable
// is not already set and exports the value under the target name.
func resolveSecretRefs(provider SecretProvider, env environment) error {
	pathToTarget := make(map[string]string)
	for _, entry := range env.Environ() {
		key, path, ok := strings.Cut(entry, "=")
		if !ok || path == "" || !strings.HasSuffix(key, ssmParamSuffix) {
			continue
		}
		target := strings.TrimSuffix(key, ssmParamSuffix)
		if _, set := env.LookupEnv(target); set {
			continue
		}
		pathToTarget[path] = target
	}
	if len(pathToTarget) == 0 {
		return nil
	}

	paths := make([]string, 0, len(pathToTarget))
	for p := range pathToTarget {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if provider == nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("a SecretProvider is required to resolve %s", strings.Join(targetsOf(paths, pathToTarget), ", ")),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmResolveTimeout)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("failed to resolve %d SSM parameters", len(paths)),
			Err:     err,
		}
	}

	var missing []string
	for _, p := range paths {
		value, ok := resolved[p]
		if !ok {
			missing = append(missing, pathToTarget[p])
			continue
		}
		if err := env.Setenv(pathToTarget[p], value); err != nil {
			return &ConfigError{Type: ErrSSMResolution, Message: "failed to export " + pathToTarget[p], Err: err}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "SSM parameters not found for: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func targetsOf(paths []string, pathToTarget map[string]string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = pathToTarget[p]
	}
	return out
}
