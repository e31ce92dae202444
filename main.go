package main

import (
	"context"
	"log"
	"os"

	"github.com/example/eshop-backend/config"
	"github.com/example/eshop-backend/modules/api"
	"github.com/example/eshop-backend/modules/catalog"
	"github.com/example/eshop-backend/modules/identity"
	"github.com/example/eshop-backend/modules/media"
	"github.com/example/eshop-backend/modules/orders"
	"github.com/example/eshop-backend/modules/payment"
	"github.com/example/eshop-backend/modules/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/shopspring/decimal"
)

func main() {
	log.Println("=== E-Shop Backend ===")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Prices and totals are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := store.Open(store.Config{Driver: cfg.DBDriver, DSN: cfg.DBURL, Debug: cfg.DBDebug})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	policy, err := api.LoadPolicy(cfg.AccessPolicyFile, cfg.APIURL)
	if err != nil {
		log.Fatalf("Failed to load access policy: %v", err)
	}

	// Create mono application with embedded NATS JetStream for uploads
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.StoragePath),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	storagePlugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        cfg.UploadBucket,
				Description: "Product images",
				MaxBytes:    1024 * 1024 * 1024,
				Storage:     fsjetstream.FileStorage,
				Compression: true,
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create storage plugin: %v", err)
	}
	if err := app.RegisterPlugin(storagePlugin, "storage"); err != nil {
		log.Fatalf("Failed to register storage plugin: %v", err)
	}

	gateway := payment.New(payment.Config{
		SecretKey:  cfg.StripeSecretKey,
		Currency:   cfg.CheckoutCurrency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	})

	mediaModule := media.NewModule(cfg.UploadBucket, int64(cfg.MaxUploadSize), app.Logger())
	apiModule := api.NewModule(api.Config{
		Port:           cfg.HTTPPort,
		APIURL:         cfg.APIURL,
		PublicBaseURL:  cfg.PublicBaseURL,
		Policy:         policy,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadSize:  cfg.MaxUploadSize,
	})
	apiModule.SetMedia(mediaModule)

	// Register modules with the framework
	// Order: storage and services first, then the HTTP surface
	modules := []mono.Module{
		store.NewModule(db, cfg.DBDriver),
		identity.NewModule(db, identity.Config{
			JWT: identity.JWTConfig{
				SecretKey:     cfg.TokenSecret,
				TokenDuration: cfg.TokenTTL,
				Issuer:        cfg.TokenIssuer,
			},
			BcryptCost: cfg.PwdSalt,
		}),
		catalog.NewModule(db, catalog.CacheConfig{
			RedisAddr: cfg.RedisAddr,
			Prefix:    cfg.CachePrefix,
			TTL:       cfg.CacheTTL,
		}),
		orders.NewModule(db, gateway),
		mediaModule,
		apiModule,
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("Database: %s", cfg.DBDriver)
	log.Printf("Read cache: %t", cfg.CacheEnabled())
	log.Printf("Payments: %t", cfg.StripeSecretKey != "")
	log.Println("")
	log.Printf("REST API (http://localhost:%d%s):", cfg.HTTPPort, cfg.APIURL)
	log.Println("  /products    /categories    /orders    /users")
	log.Println("  GET /public/uploads/:name   - Uploaded images")
	log.Println("  GET /health                 - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
