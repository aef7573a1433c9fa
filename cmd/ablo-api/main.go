// @title         Ablo API
// @version       0.1.0
// @description   Image generation, IPFS storage and on-chain IP registration

package main

import (
	"context"
	"time"

	"ablo/internal/core/cas"
	"ablo/internal/platform/config"
	"ablo/internal/platform/logger"
	phttp "ablo/internal/platform/net/http"
	sdom "ablo/internal/services/storage/domain"

	"ablo/internal/adapters/chain/story"
	hf "ablo/internal/adapters/inference/huggingface"
	"ablo/internal/adapters/pin/pinata"

	"ablo/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	hfCfg := root.Prefix("HF_")         // inference provider
	pinCfg := root.Prefix("PINATA_")    // pinning service
	storyCfg := root.Prefix("STORY_")   // chain relay + query API
	ipfsCfg := root.Prefix("IPFS_")     // local content store

	// bring up logging early
	l := logger.Get()

	// local content-addressed store
	local, err := cas.NewFS(ipfsCfg.MayString("ROOT", "./data/cas"))
	if err != nil {
		l.Panic().Err(err).Msg("cas.NewFS failed")
	}

	// external adapters, constructed once and shared
	pin := pinata.NewClient(pinata.Options{
		APIURL:  pinCfg.MayString("API_URL", ""),
		JWT:     pinCfg.MustString("JWT"),
		Gateway: pinCfg.MayString("GATEWAY", ""),
		Timeout: pinCfg.MayDuration("TIMEOUT", 60*time.Second),
	})
	inference := hf.NewClient(hf.Options{
		BaseURL: hfCfg.MayString("BASE_URL", ""),
		Token:   hfCfg.MustString("TOKEN"),
		Model:   hfCfg.MayString("MODEL", ""),
		Timeout: hfCfg.MayDuration("TIMEOUT", 120*time.Second),
	})
	chain := story.NewClient(story.Options{
		RelayURL:    storyCfg.MustString("RELAY_URL"),
		APIURL:      storyCfg.MayString("API_URL", ""),
		APIKey:      storyCfg.MayString("API_KEY", ""),
		Chain:       storyCfg.MayString("CHAIN", ""),
		SPGContract: storyCfg.MayString("SPG_CONTRACT", ""),
		Timeout:     storyCfg.MayDuration("TIMEOUT", 60*time.Second),
	})

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:    apiCfg,
			Logger:    l,
			Local:     local,
			Pinning:   pin,
			Inference: inference,
			Chain:     chain,
			Retry: sdom.RetryPolicy{
				MaxAttempts:    ipfsCfg.MayInt("MAX_RETRIES", 0),
				Backoff:        ipfsCfg.MayDuration("RETRY_BACKOFF", 0),
				AttemptTimeout: ipfsCfg.MayDuration("TIMEOUT", 0),
			},
			VerifyDelay:    storyCfg.MayDuration("VERIFY_DELAY", 5*time.Second),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
