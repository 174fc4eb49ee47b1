package main

import (
	"context"
	"time"

	"github.com/niksmo/cart-api/config"
	"github.com/niksmo/cart-api/internal/app"
	"github.com/niksmo/cart-api/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	cartService := app.New(sigCtx, cfg)

	cartService.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	cartService.Close(ctx)
}
