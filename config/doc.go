// Package config loads service configuration from a YAML file, a .env file
// and the process environment using Viper.
//
// # Usage
//
//	var cfg AggregatorConfig
//	err := config.LoadConfig("aggregator", &cfg, config.WithEnvPrefix("AGGREGATOR"))
//
// Every mapstructure key of cfg is bound to an environment variable named
// after its dotted path, upper-cased, with dots replaced by underscores and
// the optional prefix prepended: fanin.task_timeout becomes
// AGGREGATOR_FANIN_TASK_TIMEOUT. Environment values override the file.
//
// When cfg implements ApplyDefaults and Validate they are called after
// unmarshalling.
package config
