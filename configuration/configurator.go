// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/observer/blob/master/LICENSE.md.

package configuration

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	ConfigName     = "lockup"
	ConfigType     = "yaml"
	ConfigFilePath = ConfigName + "." + ConfigType
	EnvPrefix      = "lockup"
)

func Load() *Configuration {
	log := logrus.StandardLogger()
	printWorkingDir(log)
	actual := load(log)
	printConfig(log, actual)
	return actual
}

func load(log logrus.FieldLogger) *Configuration {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetConfigType(ConfigType)

	// Defaults are read first so that every key is known to viper and can be overridden from env.
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		log.Error(errors.Wrap(err, "failed to marshal default config. Default configuration is used"))
		return Default()
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		log.Error(errors.Wrap(err, "failed to read default config. Default configuration is used"))
		return Default()
	}

	v.SetConfigName(ConfigName)
	v.AddConfigPath(".")
	v.AddConfigPath(".artifacts")
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warnf("config file not found (file=%v). Default configuration is used", ConfigFilePath)
		} else {
			log.Error(errors.Wrapf(err, "failed to load config. Default configuration is used"))
			return Default()
		}
	}

	actual := &Configuration{}
	if err := v.Unmarshal(actual); err != nil {
		log.Error(errors.Wrapf(err, "failed to unmarshal readed from file config into configuration structure. Default configuration is used"))
		return Default()
	}
	return actual
}

func printWorkingDir(log logrus.FieldLogger) {
	wd, _ := os.Getwd()
	log.Infof("Working dir: %s", wd)
}

func printConfig(log logrus.FieldLogger, c *Configuration) {
	cc := cleanSecrets(c)
	out, err := yaml.Marshal(cc)
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to marshal config structure"))
		return
	}
	log.Infof("Loaded configuration: \n %s \n", string(out))
}

func cleanSecrets(c *Configuration) *Configuration {
	cc := *c
	cc.DB.URL = replacePassword(cc.DB.URL)
	cc.NATS.URL = replacePassword(cc.NATS.URL)
	return &cc
}

var passwordPattern = regexp.MustCompile(`^(?P<start>.*)(:(?P<pass>[^@\/:?]+)@)(?P<end>.*)$`)

// MaskPassword hides the password of a connection URL.
func MaskPassword(url string) string {
	return replacePassword(url)
}

func replacePassword(url string) string {
	result := []byte{}
	if passwordPattern.MatchString(url) {
		for _, submatches := range passwordPattern.FindAllStringSubmatchIndex(url, -1) {
			result = passwordPattern.ExpandString(result, `$start:<masked>@$end`, url, submatches)
		}
		return string(result)
	}
	return url
}
