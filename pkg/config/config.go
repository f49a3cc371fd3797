/*
Copyright 2023 The Quix Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"strings"
	"time"

	"github.com/quix-devrel/template-clickstream/pkg/shared/util"
)

// Environment variables accepted by the detector.
const (
	EnvWindowMinutes    = "WINDOW_MINUTES"
	EnvRedisHost        = "REDIS_HOST"
	EnvRedisPort        = "REDIS_PORT"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvKafkaInputTopic  = "KAFKA_INPUT_TOPIC"
	EnvKafkaOffersTopic = "KAFKA_OFFERS_TOPIC"
	EnvKafkaGroup       = "KAFKA_CONSUMER_GROUP"
	EnvKafkaConfig      = "KAFKA_CONFIG"
	EnvDispatchSeconds  = "DISPATCH_INTERVAL_SECONDS"
	EnvMetricsAddr      = "METRICS_ADDR"
	EnvSessionStore     = "SESSION_STORE"
)

// Store backend selectors for EnvSessionStore.
const (
	StoreTypeRedis = "redis"
	StoreTypeInMem = "inmem"
)

// Config holds everything the detector command needs to wire its
// collaborators. All values come from the environment; the zero-config
// defaults point at local Kafka and Redis.
type Config struct {
	// Window is the maximum elapsed time between a session's anchor
	// event and any event still considered part of the same session.
	Window time.Duration

	RedisAddr     string
	RedisPassword string

	KafkaBrokers    []string
	InputTopic      string
	OffersTopic     string
	ConsumerGroup   string
	KafkaConfigYAML string

	DispatchInterval time.Duration
	MetricsAddr      string
	StoreType        string
}

// Load reads the configuration from the environment.
func Load() Config {
	host := util.LookupEnvStringOr(EnvRedisHost, "localhost")
	port := util.LookupEnvStringOr(EnvRedisPort, "6379")
	return Config{
		Window:           time.Duration(util.LookupEnvIntOr(EnvWindowMinutes, 30)) * time.Minute,
		RedisAddr:        host + ":" + port,
		RedisPassword:    util.LookupEnvStringOr(EnvRedisPassword, ""),
		KafkaBrokers:     splitBrokers(util.LookupEnvStringOr(EnvKafkaBrokers, "localhost:9092")),
		InputTopic:       util.LookupEnvStringOr(EnvKafkaInputTopic, "click-data"),
		OffersTopic:      util.LookupEnvStringOr(EnvKafkaOffersTopic, "special-offers"),
		ConsumerGroup:    util.LookupEnvStringOr(EnvKafkaGroup, "behaviour-detector"),
		KafkaConfigYAML:  util.LookupEnvStringOr(EnvKafkaConfig, ""),
		DispatchInterval: time.Duration(util.LookupEnvIntOr(EnvDispatchSeconds, 10)) * time.Second,
		MetricsAddr:      util.LookupEnvStringOr(EnvMetricsAddr, ":2470"),
		StoreType:        util.LookupEnvStringOr(EnvSessionStore, StoreTypeRedis),
	}
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
