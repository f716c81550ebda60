package utils

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant  = "."
	environmentKeySeparatorConstant    = "_"
	environmentSliceSeparatorConstant  = ","
	embeddedMergeFailureConstant       = "failed to merge embedded configuration"
	configurationReadFailureConstant   = "failed to read configuration"
	configurationDecodeFailureConstant = "failed to parse configuration"
)

// ConfigurationLoader layers configuration sources into a typed value. From lowest to highest
// precedence: registered defaults, embedded configuration, the configuration file, and
// <PREFIX>_SECTION_KEY environment variables.
type ConfigurationLoader struct {
	configurationName     string
	configurationType     string
	environmentPrefix     string
	searchPaths           []string
	embeddedConfiguration []byte
	embeddedType          string
}

// LoadedConfiguration reports which file, if any, contributed to the result.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that looks for <configurationName>.<configurationType> in searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration compiled into the binary. An empty type means the loader's type.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
	loader.embeddedType = strings.TrimSpace(configurationType)
}

// LoadConfiguration decodes every layer into targetConfiguration. An explicit configurationFilePath
// must exist; otherwise a missing file in the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := loader.newViper(defaultValues)

	if mergeError := loader.mergeEmbedded(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}
	if readError := loader.mergeFile(viperInstance, configurationFilePath); readError != nil {
		return LoadedConfiguration{}, readError
	}

	if decodeError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(configurationDecodeHook())); decodeError != nil {
		return LoadedConfiguration{}, errors.Wrap(decodeError, configurationDecodeFailureConstant)
	}
	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) newViper(defaultValues map[string]any) *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)
	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}
	return viperInstance
}

func (loader *ConfigurationLoader) mergeEmbedded(viperInstance *viper.Viper) error {
	if len(loader.embeddedConfiguration) == 0 {
		return nil
	}

	if len(loader.embeddedType) > 0 {
		viperInstance.SetConfigType(loader.embeddedType)
		defer viperInstance.SetConfigType(loader.configurationType)
	}
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
		return errors.Wrap(mergeError, embeddedMergeFailureConstant)
	}
	return nil
}

func (loader *ConfigurationLoader) mergeFile(viperInstance *viper.Viper, configurationFilePath string) error {
	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if readError == nil || errors.As(readError, &notFoundError) {
		return nil
	}
	return errors.Wrap(readError, configurationReadFailureConstant)
}

// configurationDecodeHook decodes encoding.TextUnmarshaler fields from text, durations from
// strings such as "90s", and comma separated environment values into slices.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(environmentSliceSeparatorConstant),
	)
}
