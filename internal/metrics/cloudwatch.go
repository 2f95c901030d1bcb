package metrics

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"itchflow/logger"
)

var cwClient *cloudwatch.Client
var cwNamespace = "ItchFlow"

// RunSummary captures end-of-run totals for publication.
type RunSummary struct {
	FeedBytes    int64
	Messages     uint64
	UnknownBytes uint64
	Executions   uint64
	OpenOrders   int
}

// InitCloudWatch initialises the CloudWatch client using the provided
// region and namespace. If region is empty it falls back to the
// AWS_REGION environment variable. When the client cannot be created the
// function logs a warning and metrics publishing remains disabled.
func InitCloudWatch(region, namespace string) {
	log := logger.GetLogger().WithComponent("cloudwatch")

	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	ctx := context.Background()
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration; CloudWatch metrics disabled")
		return
	}

	cwClient = cloudwatch.NewFromConfig(cfg)

	if namespace != "" {
		cwNamespace = namespace
	}

	log.WithFields(logger.Fields{"region": region, "namespace": cwNamespace}).Info("initialized CloudWatch client")
}

// PublishRunSummary sends end-of-run totals to CloudWatch when the client
// has been initialised. Failures are logged but never abort the run.
func PublishRunSummary(ctx context.Context, runID string, s RunSummary) {
	log := logger.GetLogger().WithComponent("cloudwatch")
	if cwClient == nil {
		log.Debug("CloudWatch client not initialized; skipping metric publish")
		return
	}

	dims := []cwtypes.Dimension{{Name: aws.String("run_id"), Value: aws.String(runID)}}
	datum := func(name string, value float64) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dims,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(value),
		}
	}

	data := []cwtypes.MetricDatum{
		datum("FeedBytes", float64(s.FeedBytes)),
		datum("Messages", float64(s.Messages)),
		datum("UnknownBytes", float64(s.UnknownBytes)),
		datum("Executions", float64(s.Executions)),
		datum("OpenOrders", float64(s.OpenOrders)),
	}

	if _, err := cwClient.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(cwNamespace),
		MetricData: data,
	}); err != nil {
		log.WithError(err).Warn("failed to publish CloudWatch metrics")
		return
	}

	log.WithFields(logger.Fields{"run_id": runID, "metrics": len(data)}).Debug("published metrics to CloudWatch")
}
