package cmd

import (
	"context"

	"github.com/Malowking/kbrag/internal/controller/embedding"
	"github.com/Malowking/kbrag/internal/controller/rag"
	"github.com/Malowking/kbrag/internal/controller/rerank"
	"github.com/Malowking/kbrag/internal/service"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/os/gcmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Main = gcmd.Command{
		Name:  "main",
		Usage: "main",
		Brief: "start http server",
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			svcs, err := Bootstrap(ctx)
			if err != nil {
				g.Log().Fatalf(ctx, "Bootstrap failed: %v", err)
			}

			s := g.Server()
			RegisterRoutes(s, svcs)
			// Run 在收到退出信号并关闭服务器后返回
			s.Run()

			svcs.Close(ctx)
			return nil
		},
	}
)

// RegisterRoutes 挂载 /api 下的业务路由和 /metrics
func RegisterRoutes(s *ghttp.Server, svcs *service.Services) {
	s.BindHandler("/metrics", ghttp.WrapH(promhttp.Handler()))
	s.Group("/api", func(group *ghttp.RouterGroup) {
		group.Middleware(MiddlewareHandlerResponse, ghttp.MiddlewareCORS)
		group.Bind(
			rag.NewV1(svcs),
			rerank.NewV1(svcs),
			embedding.NewV1(svcs),
		)
	})
}
