// Package metrics publishes outfit-selection and weather-fetch telemetry to
// CloudWatch.
//
// Metrics emitted (namespace types.MetricNamespace unless overridden):
//   - OutfitSelected: Dims {Source, Intensity}, one per successful selection
//   - OutfitInvalid: Dims {Source, Intensity}, one per catalog coverage gap hit
//   - WeatherFetchLatency: Dims {Provider}, milliseconds per upstream call
//   - ExternalAPIFailure: Dims {Provider}, one per failed upstream call
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"outfitpicker/internal/picker"
	"outfitpicker/internal/types"
)

// Sources label which entry point produced a selection.
const (
	SourceSkill = "skill"
	SourceAPI   = "api"
	SourceCLI   = "cli"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder is what the entry points report to. Implementations never fail
// the caller; publishing errors are logged and dropped.
type Recorder interface {
	RecordSelection(ctx context.Context, source string, intensity types.Intensity, err error)
	ObserveWeatherFetch(ctx context.Context, provider string, latency time.Duration, err error)
}

var (
	_ Recorder = (*CloudWatchRecorder)(nil)
	_ Recorder = NopRecorder{}
)

// CloudWatchRecorder publishes each observation as a single PutMetricData call.
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchRecorder creates a recorder. An empty namespace selects
// types.MetricNamespace.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchRecorder{client: client, namespace: namespace, logger: logger}
}

// RecordSelection counts a selection outcome. Only ErrInvalidOutfit counts
// as OutfitInvalid; other errors (bad input, weather outage) are not a
// selection at all and are skipped.
func (r *CloudWatchRecorder) RecordSelection(ctx context.Context, source string, intensity types.Intensity, err error) {
	name := types.MetricOutfitSelected
	switch {
	case errors.Is(err, picker.ErrInvalidOutfit):
		name = types.MetricOutfitInvalid
	case err != nil:
		return
	}

	r.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			dimension(types.DimSource, source),
			dimension(types.DimIntensity, string(intensity)),
		},
	})
}

// ObserveWeatherFetch records latency in milliseconds and, on error, an
// ExternalAPIFailure count. Both data points go out in one call.
func (r *CloudWatchRecorder) ObserveWeatherFetch(ctx context.Context, provider string, latency time.Duration, err error) {
	dims := []cwtypes.Dimension{dimension(types.DimProvider, provider)}
	data := []cwtypes.MetricDatum{{
		MetricName: aws.String(types.MetricWeatherFetchLatency),
		Value:      aws.Float64(float64(latency.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Dimensions: dims,
	}}
	if err != nil {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricExternalAPIFailure),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		})
	}
	r.put(ctx, data...)
}

func (r *CloudWatchRecorder) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	}
	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.ErrorContext(ctx, "failed to publish metric",
			"error", err.Error(),
			"metric", aws.ToString(data[0].MetricName),
		)
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// NopRecorder discards everything. Used when metrics are disabled and in
// local runs without AWS credentials.
type NopRecorder struct{}

// RecordSelection does nothing.
func (NopRecorder) RecordSelection(context.Context, string, types.Intensity, error) {}

// ObserveWeatherFetch does nothing.
func (NopRecorder) ObserveWeatherFetch(context.Context, string, time.Duration, error) {}
