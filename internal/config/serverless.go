package config

import (
	"os"
)

// LambdaSQLitePath is used when the SQLite default is kept inside Lambda,
// where /tmp is the only writable directory
const LambdaSQLitePath = "/tmp/htg.db"

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	return &ServerlessConfig{
		IsLambda:     isRunningInLambda(),
		FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		Region:       os.Getenv("AWS_REGION"),
		Stage:        GetEnv("STAGE", "dev"),
	}
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return isRunningInLambda()
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for serverless deployment.
// Lambda logs go to CloudWatch as JSON, and schema changes are left to cmd/migrate
// unless DB_AUTO_MIGRATE is set explicitly.
func AdaptConfigForServerless(config *Config) *Config {
	if !IsServerlessMode() {
		return config
	}

	config.Logging.Format = "json"

	if _, set := os.LookupEnv("DB_AUTO_MIGRATE"); !set {
		config.Database.AutoMigrate = false
	}

	if config.Database.Driver == "sqlite" && config.Database.ConnectionString == DefaultSQLitePath {
		config.Database.ConnectionString = LambdaSQLitePath
	}

	// One warm container serves one request at a time
	if config.Database.Driver == "postgres" && config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 2
		config.Database.MaxIdleConns = 1
	}

	return config
}

// GetOptimizedConfig returns validated configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	return loadOptimized(true)
}

// GetOptimizedPublicConfig is GetOptimizedConfig without the identity
// requirements, for functions that never call the identity provider
func GetOptimizedPublicConfig() (*Config, error) {
	return loadOptimized(false)
}

func loadOptimized(requireIdentity bool) (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	// Apply serverless adaptations if needed
	config = AdaptConfigForServerless(config)

	validate := config.ValidateRuntime
	if requireIdentity {
		validate = config.Validate
	}
	if err := validate(); err != nil {
		return nil, err
	}

	return config, nil
}
