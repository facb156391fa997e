package ai

import (
	"github.com/reusedev/cutout-hub/config"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/clipdrop"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/local"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/photoroom"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout/removebg"
	"github.com/reusedev/cutout-hub/internal/modules/http_client"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
)

type remoteFactory struct {
	name       consts.ProviderName
	descriptor func(apiKey string) cutout.ProviderDescriptor
	build      func(cutout.ProviderDescriptor, *http_client.HttpClient) *cutout.RemoteProvider
}

var remoteFactories = []remoteFactory{
	{consts.RemoveBG, removebg.Descriptor, removebg.New},
	{consts.Clipdrop, clipdrop.Descriptor, clipdrop.New},
	{consts.Photoroom, photoroom.Descriptor, photoroom.New},
}

// Providers is the assembled catalog plus one callable per catalog entry.
type Providers struct {
	Registry *cutout.Registry
	ByName   map[string]cutout.Provider
}

// BuildProviders applies the configured credentials, endpoints and costs on top of the
// built-in catalog. Remote providers without a credential stay in the catalog as unconfigured.
func BuildProviders(cfg *config.Config) (*Providers, error) {
	client := http_client.NewWithTimeout(config.Duration(cfg.RequestTimeout))
	ret := &Providers{ByName: make(map[string]cutout.Provider)}

	remotes := make([]cutout.ProviderDescriptor, 0, len(remoteFactories))
	for _, f := range remoteFactories {
		override := cfg.Providers[f.name.String()]
		desc := f.descriptor(override.APIKey)
		if override.Endpoint != "" {
			desc.Endpoint = override.Endpoint
		}
		if override.CostPerImage > 0 {
			desc.CostPerImage = override.CostPerImage
		}
		remotes = append(remotes, desc)
		ret.ByName[desc.Name] = f.build(desc, client)
		logs.Logger.Info().
			Str("provider", desc.Name).
			Bool("configured", desc.Configured()).
			Float64("cost_per_image", desc.CostPerImage).
			Msg("remote provider registered")
	}
	for name := range cfg.Providers {
		if _, ok := ret.ByName[name]; !ok {
			logs.Logger.Warn().Str("provider", name).Msg("unknown provider in config ignored")
		}
	}

	locals := local.Catalog(cfg.LocalModels)
	for _, d := range locals {
		m, err := local.New(d.Name)
		if err != nil {
			return nil, err
		}
		ret.ByName[d.Name] = m
	}
	ret.Registry = cutout.NewRegistry(remotes, locals)
	return ret, nil
}
