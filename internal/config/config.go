// Package config 演示程序配置，yaml 文件加 CRIMSON_ 前缀的环境变量覆盖
package config

import (
	"strings"

	"github.com/dzm2020/crimson/pkg/glog"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	PublishCopyValue   = "value"
	PublishCopyMsgPack = "msgpack"

	envPrefix = "CRIMSON"
)

// Config 配置
type Config struct {
	// Glog 配置
	Glog glog.Config `json:"glog" yaml:"glog" mapstructure:"glog"`
	// Actor 配置
	Actor ActorConfig `json:"actor" yaml:"actor" mapstructure:"actor"`
}

// ActorConfig actor 系统配置
type ActorConfig struct {
	// PoolSize 协程池容量，<=0 表示不限；每个 actor 占用一个协程
	PoolSize int `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`
	// PublishCopy Publish 副本方式: value 按值复制, msgpack 深拷贝
	PublishCopy string `json:"publishCopy" yaml:"publishCopy" mapstructure:"publishCopy"`
}

// Default 生成默认配置
func Default() *Config {
	return &Config{
		Glog: *glog.DefaultConfig(),
		Actor: ActorConfig{
			PoolSize:    0,
			PublishCopy: PublishCopyValue,
		},
	}
}

// Load 读取 yaml 配置文件，缺省字段取 Default 的值
func Load(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	setDefaults(vp, Default())

	if err := vp.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	cfg := new(Config)
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 注册默认值，AutomaticEnv 只对已知 key 生效
func setDefaults(vp *viper.Viper, def *Config) {
	vp.SetDefault("glog.path", def.Glog.Path)
	vp.SetDefault("glog.level", def.Glog.Level)
	vp.SetDefault("glog.printConsole", def.Glog.PrintConsole)
	vp.SetDefault("glog.file.maxSize", def.Glog.File.MaxSize)
	vp.SetDefault("glog.file.maxBackups", def.Glog.File.MaxBackups)
	vp.SetDefault("glog.file.maxAge", def.Glog.File.MaxAge)
	vp.SetDefault("glog.file.compress", def.Glog.File.Compress)
	vp.SetDefault("glog.file.localTime", def.Glog.File.LocalTime)
	vp.SetDefault("actor.poolSize", def.Actor.PoolSize)
	vp.SetDefault("actor.publishCopy", def.Actor.PublishCopy)
}

// Validate 校验取值
func (c *Config) Validate() error {
	if !glog.ValidLevel(c.Glog.Level) {
		return errors.Errorf("config: unknown glog level %q", c.Glog.Level)
	}
	switch c.Actor.PublishCopy {
	case PublishCopyValue, PublishCopyMsgPack:
	default:
		return errors.Errorf("config: unknown actor publishCopy %q", c.Actor.PublishCopy)
	}
	return nil
}

// Marshal 输出 yaml
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "config: marshal")
	}
	return data, nil
}
