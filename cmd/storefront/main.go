package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/api"
	"github.com/pdv-commerce/storefront/internal/auth"
	"github.com/pdv-commerce/storefront/internal/cart"
	"github.com/pdv-commerce/storefront/internal/chat"
	"github.com/pdv-commerce/storefront/internal/orders"
	"github.com/pdv-commerce/storefront/internal/products"
	"github.com/pdv-commerce/storefront/pkg/config"
	"github.com/pdv-commerce/storefront/pkg/logger"
	"github.com/pdv-commerce/storefront/pkg/metrics"
	pkgredis "github.com/pdv-commerce/storefront/pkg/redis"
)

// app wires the client engine together for the CLI commands.
type app struct {
	cfg  *config.Config
	logg *logger.Logger

	auth     auth.Service
	products products.Service
	orders   orders.Service
	gateway  orders.Gateway
	chat     chat.Service

	cartStore *cart.Store
	snapshots cart.SnapshotStore
}

func newApp(ctx context.Context) (*app, error) {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	sessions, err := auth.NewFileSessionStore(cfg.Session.Path)
	if err != nil {
		return nil, err
	}

	tokens := api.TokenSourceFunc(func() string {
		session, ok, err := sessions.Load()
		if err != nil || !ok {
			return ""
		}
		return session.Token
	})

	client, err := api.NewClient(cfg.API, tokens, logg)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(client, sessions, logg)
	if err != nil {
		return nil, err
	}
	productService, err := products.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	orderService, err := orders.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	gateway, err := orders.NewGateway(client, logg, metrics.NewDispatchMetrics(nil))
	if err != nil {
		return nil, err
	}
	chatService, err := chat.NewService(client, logg)
	if err != nil {
		return nil, err
	}

	var snapshots cart.SnapshotStore
	if cfg.Redis.Configured() {
		redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		snapshots = cart.NewRedisSnapshotStore(redisClient, cfg.Cart.SnapshotTTL)
	} else {
		snapshots, err = cart.NewFileSnapshotStore("")
		if err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:       cfg,
		logg:      logg,
		auth:      authService,
		products:  productService,
		orders:    orderService,
		gateway:   gateway,
		chat:      chatService,
		cartStore: cart.NewStore(),
		snapshots: snapshots,
	}

	if snap, ok, err := snapshots.Load(ctx, a.cartKey()); err == nil && ok {
		a.cartStore.Restore(snap.Lines)
	}
	return a, nil
}

// cartKey scopes the persisted cart to the signed-in user.
func (a *app) cartKey() string {
	if userID := a.auth.UserID(); userID > 0 {
		return strconv.FormatInt(userID, 10)
	}
	return "anonymous"
}

func (a *app) saveCart(ctx context.Context) error {
	snap := cart.Snapshot{Lines: a.cartStore.Lines(), SavedAt: time.Now()}
	return a.snapshots.Save(ctx, a.cartKey(), snap)
}

func (a *app) clearCartSnapshot(ctx context.Context) error {
	return a.snapshots.Clear(ctx, a.cartKey())
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client for the PDV marketplace",
	Long: `Command line storefront for the PDV marketplace.

Browse the catalog, manage a cart, walk through checkout and track
orders from the terminal. The cart survives between invocations; sign
in with "storefront login" before checking out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
