// Package main implements the bootstrap CLI for the outfit services.
//
// It copies the secrets the skill Lambda and the HTTP API need into AWS SSM
// Parameter Store before a deploy, and prints the *_SSM_PARAM pointer lines
// to add to their environments.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap -env=dev
//	go run ./cmd/ops/bootstrap -env=prod -profile=outfit-prod -region=us-east-1 -overwrite
//
// Values are read from the process environment or a .env file:
//
//	OWM_API_KEY     required, probed against OpenWeatherMap
//	ALEXA_SKILL_ID  optional
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/joho/godotenv"
)

var validEnvironments = map[string]bool{
	"dev":     true,
	"staging": true,
	"prod":    true,
}

const defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// BootstrapContext is the verified AWS session shared by later phases.
type BootstrapContext struct {
	Environment string
	AWSProfile  string
	AWSRegion   string
	AccountID   string
	CallerARN   string
	AWSConfig   aws.Config
	Logger      *slog.Logger
}

type flags struct {
	env            string
	profile        string
	region         string
	endpointURL    string
	weatherBaseURL string
	overwrite      bool
	skipValidation bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVar(&f.env, "env", "", "Target environment (dev/staging/prod) [required]")
	fs.StringVar(&f.profile, "profile", "", "AWS CLI profile (default: uses default credential chain)")
	fs.StringVar(&f.region, "region", "us-east-1", "AWS region")
	fs.StringVar(&f.endpointURL, "endpoint-url", "", "AWS endpoint override (LocalStack)")
	fs.StringVar(&f.weatherBaseURL, "owm-base-url", defaultWeatherBaseURL, "OpenWeatherMap API base URL used to probe the key")
	fs.BoolVar(&f.overwrite, "overwrite", false, "Replace parameters that already exist")
	fs.BoolVar(&f.skipValidation, "skip-validation", false, "Write values without probing them")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Outfit Picker Bootstrap Tool\n\n")
		fmt.Fprintf(fs.Output(), "Writes service secrets to AWS SSM Parameter Store.\n\n")
		fmt.Fprintf(fs.Output(), "Usage:\n")
		fmt.Fprintf(fs.Output(), "  bootstrap -env=dev [-profile=NAME] [-region=REGION] [-overwrite]\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.env == "" {
		fmt.Fprintf(stderr, "error: -env is required\n\n")
		fs.Usage()
		return nil, errors.New("-env is required")
	}
	if !validEnvironments[f.env] {
		return nil, fmt.Errorf("invalid environment %q (must be dev, staging, or prod)", f.env)
	}
	return &f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(2)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bctx, err := initializeSession(ctx, f, logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}

	if bctx.Environment == "prod" && !confirmProduction(bctx, os.Stdin, os.Stderr) {
		fmt.Fprintln(os.Stderr, "Aborted. No changes were made.")
		return
	}
	printBanner(os.Stderr, bctx)

	runner := &Runner{
		SSM:            NewSSMManager(bctx),
		Lookup:         os.LookupEnv,
		Stderr:         os.Stderr,
		Overwrite:      f.overwrite,
		SkipValidation: f.skipValidation,
	}
	results, err := runner.Run(ctx, BuildInventory(NewValidator(f.weatherBaseURL, logger)))
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nAdd these to the skill and API environments:\n\n")
	if err := WritePointers(os.Stdout, results); err != nil {
		logger.Error("writing pointers", "error", err)
		os.Exit(1)
	}
	logger.Info("bootstrap completed", "env", bctx.Environment, "account", bctx.AccountID, "region", bctx.AWSRegion)
}

// initializeSession loads AWS credentials and confirms them with STS
// GetCallerIdentity.
func initializeSession(ctx context.Context, f *flags, logger *slog.Logger) (*BootstrapContext, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if f.region != "" {
		opts = append(opts, awsconfig.WithRegion(f.region))
	}
	if f.profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(f.profile))
	}
	if f.endpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(f.endpointURL))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	identityCtx, identityCancel := context.WithTimeout(ctx, 10*time.Second)
	defer identityCancel()

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(identityCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("verifying AWS identity (STS GetCallerIdentity): %w\n"+
			"  Check that your AWS credentials are configured correctly.\n"+
			"  Profile: %q, Region: %q", err, f.profile, f.region)
	}

	bctx := &BootstrapContext{
		Environment: f.env,
		AWSProfile:  f.profile,
		AWSRegion:   f.region,
		AccountID:   aws.ToString(identity.Account),
		CallerARN:   aws.ToString(identity.Arn),
		AWSConfig:   cfg,
		Logger:      logger,
	}
	logger.Info("AWS identity verified", "account_id", bctx.AccountID, "arn", bctx.CallerARN, "region", f.region)
	return bctx, nil
}

// confirmProduction requires the operator to type "yes".
func confirmProduction(bctx *BootstrapContext, in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "============================================================")
	fmt.Fprintln(out, "  WARNING: You are targeting the PRODUCTION environment")
	fmt.Fprintln(out, "============================================================")
	fmt.Fprintf(out, "  Account: %s\n", bctx.AccountID)
	fmt.Fprintf(out, "  Region:  %s\n", bctx.AWSRegion)
	fmt.Fprintf(out, "  ARN:     %s\n", bctx.CallerARN)
	fmt.Fprintln(out, "============================================================")
	fmt.Fprint(out, "\nType 'yes' to continue: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes")
}

func printBanner(out io.Writer, bctx *BootstrapContext) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "------------------------------------------------------------")
	fmt.Fprintln(out, "  Outfit Picker Bootstrap")
	fmt.Fprintln(out, "------------------------------------------------------------")
	fmt.Fprintf(out, "  Environment:  %s\n", bctx.Environment)
	fmt.Fprintf(out, "  AWS Account:  %s\n", bctx.AccountID)
	fmt.Fprintf(out, "  AWS Region:   %s\n", bctx.AWSRegion)
	fmt.Fprintf(out, "  Identity:     %s\n", bctx.CallerARN)
	if bctx.AWSProfile != "" {
		fmt.Fprintf(out, "  Profile:      %s\n", bctx.AWSProfile)
	}
	fmt.Fprintf(out, "  SSM Prefix:   /%s/outfitpicker/\n", bctx.Environment)
	fmt.Fprintln(out, "------------------------------------------------------------")
}
