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

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"github.com/quix-devrel/template-clickstream/pkg/audit"
	"github.com/quix-devrel/template-clickstream/pkg/behaviour"
	"github.com/quix-devrel/template-clickstream/pkg/config"
	"github.com/quix-devrel/template-clickstream/pkg/metrics"
	redisclient "github.com/quix-devrel/template-clickstream/pkg/shared/clients/redis"
	"github.com/quix-devrel/template-clickstream/pkg/shared/logging"
	sharedutil "github.com/quix-devrel/template-clickstream/pkg/shared/util"
	"github.com/quix-devrel/template-clickstream/pkg/sinks/offers"
	kafkasource "github.com/quix-devrel/template-clickstream/pkg/sources/kafka"
	"github.com/quix-devrel/template-clickstream/pkg/store"
	inmemstore "github.com/quix-devrel/template-clickstream/pkg/store/inmem"
	redisstore "github.com/quix-devrel/template-clickstream/pkg/store/redis"
)

const (
	sessionBucketName    = "sessions"
	defaultReadBatchSize = 100
)

func NewDetectorCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "detector",
		Short: "Start the behaviour detector",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger().Named("detector")
			conf := config.Load()

			ctx, stop := signal.NotifyContext(logging.WithLogger(cmd.Context(), logger),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			redisClient := redisclient.NewRedisClientFromConfig(conf)
			sessionStore, err := newSessionStore(conf, redisClient)
			if err != nil {
				return err
			}
			defer func() { _ = sessionStore.Close() }()

			auditor := audit.NewStream(redisClient, audit.WithLogger(logger.Named("states")))
			detector, err := behaviour.NewDetector(sessionStore,
				behaviour.WithLogger(logger),
				behaviour.WithWindow(conf.Window),
				behaviour.WithAuditor(auditor))
			if err != nil {
				return fmt.Errorf("failed to create detector, %w", err)
			}

			source, err := kafkasource.NewClickSource(conf.KafkaBrokers, conf.InputTopic, conf.KafkaConfigYAML,
				kafkasource.WithLogger(logger),
				kafkasource.WithGroupName(conf.ConsumerGroup))
			if err != nil {
				return fmt.Errorf("failed to create click source, %w", err)
			}

			producerConfig, err := sharedutil.GetSaramaConfigFromYAMLString(conf.KafkaConfigYAML)
			if err != nil {
				return err
			}
			producer, err := sarama.NewSyncProducer(conf.KafkaBrokers, producerConfig)
			if err != nil {
				return fmt.Errorf("failed to create kafka producer, %w", err)
			}
			dispatcher, err := offers.NewDispatcher(producer, conf.OffersTopic, detector.Recipients(),
				offers.WithLogger(logger),
				offers.WithInterval(conf.DispatchInterval))
			if err != nil {
				return fmt.Errorf("failed to create offer dispatcher, %w", err)
			}

			metricsShutdown, err := metrics.NewMetricsServer(conf.MetricsAddr).Start(ctx)
			if err != nil {
				return fmt.Errorf("failed to start metrics server, %w", err)
			}

			wg := new(sync.WaitGroup)
			wg.Add(1)
			go func() {
				defer wg.Done()
				dispatcher.Run(ctx)
			}()

			source.Start()
			logger.Infow("Detector running", "window", conf.Window.String(),
				"inputTopic", conf.InputTopic, "offersTopic", conf.OffersTopic)

			runErr := runDetectorLoop(ctx, detector, source)

			_ = source.Close()
			wg.Wait()
			_ = dispatcher.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsShutdown(shutdownCtx)
			return runErr
		},
	}
	return command
}

// runDetectorLoop reads click batches and feeds them through the
// automaton until the context is cancelled. Offsets are acked only
// after the whole batch has been processed and the sessions written.
func runDetectorLoop(ctx context.Context, detector *behaviour.Detector, source *kafkasource.ClickSource) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		msgs := source.Read(ctx, defaultReadBatchSize)
		if len(msgs) == 0 {
			continue
		}
		events := make([]behaviour.Event, len(msgs))
		for i, m := range msgs {
			events[i] = m.Event
		}
		if err := detector.ProcessBatch(ctx, events); err != nil {
			return err
		}
		source.Ack(msgs)
	}
}

func newSessionStore(conf config.Config, redisClient *redisclient.RedisClient) (store.SessionStorer, error) {
	switch conf.StoreType {
	case config.StoreTypeRedis:
		return redisstore.NewKVRedisKVStore(sessionBucketName, redisClient), nil
	case config.StoreTypeInMem:
		return inmemstore.NewKVInMemKVStore(sessionBucketName), nil
	default:
		return nil, fmt.Errorf("unsupported session store type %q", conf.StoreType)
	}
}
