package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dzm2020/crimson/internal/config"
	"github.com/dzm2020/crimson/pkg/actor"
	"github.com/dzm2020/crimson/pkg/glog"
	"github.com/dzm2020/crimson/pkg/lib/grs"
	"github.com/dzm2020/crimson/pkg/utils/serializer"

	"go.uber.org/zap"
)

var (
	configPath  = flag.String("config", "", "yaml 配置文件路径，为空使用默认配置")
	printConfig = flag.Bool("print-config", false, "输出生效的配置后退出")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			glog.Fatal("load config", zap.Error(err))
		}
	}
	if *printConfig {
		data, err := config.Marshal(cfg)
		if err != nil {
			glog.Fatal("marshal config", zap.Error(err))
		}
		_, _ = os.Stdout.Write(data)
		return
	}

	glog.Init(&cfg.Glog)
	defer glog.Stop()

	pool, err := grs.New(cfg.Actor.PoolSize)
	if err != nil {
		glog.Fatal("create pool", zap.Error(err))
	}
	defer pool.Release()

	opts := []actor.Option[int]{actor.WithPool[int](pool)}
	if cfg.Actor.PublishCopy == config.PublishCopyMsgPack {
		opts = append(opts, actor.WithCloner[int](serializer.Clone[int]))
	}
	system := actor.NewSystem[int](opts...)
	if err = mountDemo(system); err != nil {
		glog.Fatal("mount demo actors", zap.Error(err))
	}

	err = system.Run(func(event actor.SystemEvent) {
		fmt.Println(event)
		actor.LogObserver(event)
	})
	if err != nil {
		glog.Fatal("run system", zap.Error(err))
	}
	stats := system.Stats()
	glog.Info("demo finished",
		zap.Int("actors", stats.Mounted),
		zap.Uint64("delivered", stats.Delivered),
		zap.Uint64("errors", stats.Errors))
}
