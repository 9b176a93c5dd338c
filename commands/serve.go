package commands

import (
	"context"
	"time"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/spf13/cobra"

	"smartsquare-server/auth"
	"smartsquare-server/routes"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			issuer := auth.NewIssuer(a.cfg.SecretKey, a.cfg.JWTTTL)
			if a.cfg.JWKSURL != "" {
				if err := issuer.WithJWKS(a.cfg.JWKSURL); err != nil {
					return err
				}
			}
			defer issuer.Close()

			srv := iris.New()
			srv.Logger().SetLevel("info")
			if a.cfg.Debug {
				srv.Logger().SetLevel("debug")
			}
			srv.Use(recover.New())
			routes.Register(srv, routes.NewHandler(a.svc, issuer), a.cfg.CORSAllowedOrigins)

			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					golog.Errorf("shutdown: %v", err)
				}
			}()

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = ":" + a.cfg.Port
			}
			return srv.Listen(addr, iris.WithoutInterruptHandler, iris.WithoutServerError(iris.ErrServerClosed))
		},
	}
	cmd.Flags().String("addr", "", "listen address, defaults to :$PORT")
	return cmd
}
