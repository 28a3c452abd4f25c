package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubSecretProvider struct {
	values map[string]string
	err    error
	keys   []string
}

func (p *stubSecretProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	p.keys = append(p.keys, keys...)
	if p.err != nil {
		return nil, p.err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := p.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func setLocalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("OWM_API_KEY", "owm-test-key")
}

func TestLoad_LocalDefaults(t *testing.T) {
	setLocalEnv(t)
	for _, k := range []string{"PORT", "LOG_LEVEL", "OWM_BASE_URL", "DEFAULT_ZIP", "DEFAULT_COUNTRY", "ENABLE_METRICS", "WEATHER_RATE_LIMIT_RPS"} {
		unsetEnv(t, k)
	}

	cfg, err := load(nil, osEnvironment{})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "owm-test-key", cfg.Weather.APIKey.Unmask())
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 1.0, cfg.Weather.RateLimitRPS)
	assert.Equal(t, 3*time.Second, cfg.Skill.APITimeout)
	assert.Equal(t, "02144", cfg.Defaults.Zip)
	assert.Equal(t, "US", cfg.Defaults.Country)
	assert.Equal(t, "OutfitPicker", cfg.Observability.MetricNamespace)
	assert.False(t, cfg.Observability.EnableMetrics)
	assert.Equal(t, NewBuildInfo(), cfg.Build)
	assert.Equal(t, time.UTC, time.Local)
}

func TestLoad_Overrides(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("WEATHER_TIMEOUT", "2s")
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("DEFAULT_ZIP", "94110")

	cfg, err := load(nil, osEnvironment{})
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Weather.Timeout)
	assert.True(t, cfg.Observability.EnableMetrics)
	assert.Equal(t, "94110", cfg.Defaults.Zip)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
		want  ConfigErrorType
	}{
		{"missing api key", func(t *testing.T) { unsetEnv(t, "OWM_API_KEY") }, ErrValidation},
		{"unknown environment", func(t *testing.T) { t.Setenv("APP_ENV", "qa") }, ErrValidation},
		{"bad log level", func(t *testing.T) { t.Setenv("LOG_LEVEL", "loud") }, ErrValidation},
		{"bad country", func(t *testing.T) { t.Setenv("DEFAULT_COUNTRY", "USA") }, ErrValidation},
		{"bad duration", func(t *testing.T) { t.Setenv("WEATHER_TIMEOUT", "soon") }, ErrParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLocalEnv(t)
			tt.setup(t)

			_, err := load(&stubSecretProvider{}, osEnvironment{})
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.want, cfgErr.Type)
		})
	}
}

func TestLoad_ResolvesSSMOutsideLocal(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	unsetEnv(t, "OWM_API_KEY")
	t.Setenv("OWM_API_KEY_SSM_PARAM", "/prod/outfitpicker/owm-key")

	provider := &stubSecretProvider{values: map[string]string{"/prod/outfitpicker/owm-key": "from-ssm"}}
	cfg, err := load(provider, osEnvironment{})
	require.NoError(t, err)

	assert.Equal(t, "from-ssm", cfg.Weather.APIKey.Unmask())
	assert.Equal(t, []string{"/prod/outfitpicker/owm-key"}, provider.keys)
}

func TestLoad_SkipsSSMForLocal(t *testing.T) {
	setLocalEnv(t)
	t.Setenv("OWM_API_KEY_SSM_PARAM", "/dev/owm")

	provider := &stubSecretProvider{}
	_, err := load(provider, osEnvironment{})
	require.NoError(t, err)
	assert.Empty(t, provider.keys)
}

// fakeEnvironment backs resolveSecretRefs tests without touching the process.
type fakeEnvironment map[string]string

func (f fakeEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func (f fakeEnvironment) Setenv(key, value string) error {
	f[key] = value
	return nil
}

func (f fakeEnvironment) Environ() []string {
	out := make([]string, 0, len(f))
	for k, v := range f {
		out = append(out, k+"="+v)
	}
	return out
}

func TestResolveSecretRefs(t *testing.T) {
	t.Run("direct value wins", func(t *testing.T) {
		env := fakeEnvironment{"OWM_API_KEY": "direct", "OWM_API_KEY_SSM_PARAM": "/p/owm"}
		provider := &stubSecretProvider{}
		require.NoError(t, resolveSecretRefs(provider, env))
		assert.Equal(t, "direct", env["OWM_API_KEY"])
		assert.Empty(t, provider.keys)
	})

	t.Run("empty path ignored", func(t *testing.T) {
		env := fakeEnvironment{"OWM_API_KEY_SSM_PARAM": ""}
		require.NoError(t, resolveSecretRefs(nil, env))
	})

	t.Run("nil provider", func(t *testing.T) {
		env := fakeEnvironment{"OWM_API_KEY_SSM_PARAM": "/p/owm"}
		err := resolveSecretRefs(nil, env)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrSSMResolution, cfgErr.Type)
		assert.Contains(t, cfgErr.Message, "OWM_API_KEY")
	})

	t.Run("provider failure", func(t *testing.T) {
		env := fakeEnvironment{"OWM_API_KEY_SSM_PARAM": "/p/owm"}
		boom := errors.New("throttled")
		err := resolveSecretRefs(&stubSecretProvider{err: boom}, env)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing parameter", func(t *testing.T) {
		env := fakeEnvironment{"OWM_API_KEY_SSM_PARAM": "/p/owm", "OTHER_SSM_PARAM": "/p/other"}
		provider := &stubSecretProvider{values: map[string]string{"/p/other": "x"}}
		err := resolveSecretRefs(provider, env)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SSM parameters not found for: OWM_API_KEY")
		assert.Equal(t, "x", env["OTHER"])
	})
}

func TestEnvVarProvider(t *testing.T) {
	t.Setenv("LOCAL_OWM_KEY", "abc")
	unsetEnv(t, "LOCAL_MISSING")

	got, err := NewEnvVarProvider().GetParametersBatch(context.Background(), []string{"LOCAL_OWM_KEY", "LOCAL_MISSING"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"LOCAL_OWM_KEY": "abc"}, got)
}

type mockSSM struct {
	mock.Mock
}

func (m *mockSSM) GetParameters(ctx context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(*ssm.GetParametersInput) *ssm.GetParametersOutput); ok {
		return fn(in), args.Error(1)
	}
	if out := args.Get(0); out != nil {
		return out.(*ssm.GetParametersOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSSMProvider_Batches(t *testing.T) {
	keys := make([]string, 12)
	for i := range keys {
		keys[i] = "/p/" + string(rune('a'+i))
	}

	client := &mockSSM{}
	client.On("GetParameters", mock.Anything, mock.Anything).
		Return(func(in *ssm.GetParametersInput) *ssm.GetParametersOutput {
			out := &ssm.GetParametersOutput{}
			for _, n := range in.Names {
				out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: aws.String(n), Value: aws.String("v" + n)})
			}
			return out
		}, nil)

	p := &SSMProvider{region: "us-east-1", client: client}
	got, err := p.GetParametersBatch(context.Background(), keys)
	require.NoError(t, err)

	assert.Len(t, got, 12)
	assert.Equal(t, "v/p/a", got["/p/a"])
	client.AssertNumberOfCalls(t, "GetParameters", 2)
	for _, call := range client.Calls {
		in := call.Arguments.Get(1).(*ssm.GetParametersInput)
		assert.True(t, aws.ToBool(in.WithDecryption))
		assert.LessOrEqual(t, len(in.Names), ssmMaxBatchSize)
	}
}

func TestSSMProvider_InvalidParameters(t *testing.T) {
	client := &mockSSM{}
	client.On("GetParameters", mock.Anything, mock.Anything).
		Return(&ssm.GetParametersOutput{InvalidParameters: []string{"/p/gone"}}, nil)

	_, err := (&SSMProvider{client: client}).GetParametersBatch(context.Background(), []string{"/p/gone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/p/gone")
}

func TestSSMProvider_EmptyAndCancelled(t *testing.T) {
	client := &mockSSM{}
	p := &SSMProvider{client: client}

	got, err := p.GetParametersBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.GetParametersBatch(ctx, []string{"/p/a"})
	assert.ErrorIs(t, err, context.Canceled)
	client.AssertNotCalled(t, "GetParameters", mock.Anything, mock.Anything)
}

func TestSecretFieldsRedacted(t *testing.T) {
	cfg := Config{Weather: WeatherConfig{APIKey: "owm-secret"}}
	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "owm-secret")
}

func TestBuildInfo(t *testing.T) {
	b := NewBuildInfo()
	assert.Equal(t, "dev", b.Version)
	assert.Equal(t, "OutfitPicker/dev (+none)", b.UserAgent())
}

func TestConfigError(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigError{Type: ErrParsing, Message: "bad", Err: inner}
	assert.Equal(t, "[PARSING_FAILED] bad: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "[VALIDATION_FAILED] x", (&ConfigError{Type: ErrValidation, Message: "x"}).Error())
}
