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
	"bytes"
	"io"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/quix-devrel/template-clickstream/pkg/config"
	redisclient "github.com/quix-devrel/template-clickstream/pkg/shared/clients/redis"
)

func Test_Commands(t *testing.T) {
	t.Run("test root", func(t *testing.T) {
		b := bytes.NewBufferString("")
		rootCmd.SetOut(b)
		rootCmd.SetArgs([]string{"help"})
		Execute()
		output, _ := io.ReadAll(b)
		assert.Contains(t, string(output), "Available Commands")
	})

	t.Run("detector command shape", func(t *testing.T) {
		cmd := NewDetectorCommand()
		assert.Equal(t, "detector", cmd.Use)
		assert.NotNil(t, cmd.RunE)
	})
}

func Test_newSessionStore(t *testing.T) {
	client := redisclient.NewRedisClient(&goredis.UniversalOptions{Addrs: []string{"localhost:6379"}})

	s, err := newSessionStore(config.Config{StoreType: config.StoreTypeInMem}, client)
	assert.NoError(t, err)
	assert.Equal(t, sessionBucketName, s.GetStoreName())

	s, err = newSessionStore(config.Config{StoreType: config.StoreTypeRedis}, client)
	assert.NoError(t, err)
	assert.Equal(t, sessionBucketName, s.GetStoreName())

	_, err = newSessionStore(config.Config{StoreType: "nonono"}, client)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported session store type")
}
