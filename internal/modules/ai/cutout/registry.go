package cutout

import (
	"sort"

	"github.com/reusedev/cutout-hub/internal/modules/errs"
)

type ProviderDescriptor struct {
	Name         string  `json:"name"`
	Endpoint     string  `json:"endpoint"`
	Credential   string  `json:"-"`
	AuthHeader   string  `json:"-"`
	CostPerImage float64 `json:"cost_per_image"`
}

func (d ProviderDescriptor) Configured() bool {
	return d.Credential != ""
}

type LocalModelDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WeightSize  string `json:"weight_size"`
}

// Registry is the static provider catalog. It is built once at startup and only read afterwards.
type Registry struct {
	remote      map[string]ProviderDescriptor
	remoteOrder []string
	local       map[string]LocalModelDescriptor
	localOrder  []string
}

func NewRegistry(remote []ProviderDescriptor, local []LocalModelDescriptor) *Registry {
	r := &Registry{
		remote: make(map[string]ProviderDescriptor, len(remote)),
		local:  make(map[string]LocalModelDescriptor, len(local)),
	}
	for _, d := range remote {
		if _, ok := r.remote[d.Name]; !ok {
			r.remoteOrder = append(r.remoteOrder, d.Name)
		}
		r.remote[d.Name] = d
	}
	for _, d := range local {
		if _, ok := r.local[d.Name]; !ok {
			r.localOrder = append(r.localOrder, d.Name)
		}
		r.local[d.Name] = d
	}
	return r
}

// Remote returns the descriptor of a remote provider that is ready to be called.
func (r *Registry) Remote(name string) (ProviderDescriptor, error) {
	d, ok := r.remote[name]
	if !ok {
		return ProviderDescriptor{}, errs.ForProvider(errs.KindUnknownProvider, name, 0, "not in catalog")
	}
	if !d.Configured() {
		return d, errs.ForProvider(errs.KindUnconfigured, name, 0, "missing credential")
	}
	return d, nil
}

func (r *Registry) Local(name string) (LocalModelDescriptor, bool) {
	d, ok := r.local[name]
	return d, ok
}

func (r *Registry) IsLocal(name string) bool {
	_, ok := r.local[name]
	return ok
}

func (r *Registry) Known(name string) bool {
	_, remote := r.remote[name]
	return remote || r.IsLocal(name)
}

// DefaultOrder lists local models first, then configured remote providers from cheapest to priciest.
func (r *Registry) DefaultOrder() []string {
	order := append([]string{}, r.localOrder...)
	var remote []ProviderDescriptor
	for _, name := range r.remoteOrder {
		if d := r.remote[name]; d.Configured() {
			remote = append(remote, d)
		}
	}
	sort.SliceStable(remote, func(i, j int) bool {
		return remote[i].CostPerImage < remote[j].CostPerImage
	})
	for _, d := range remote {
		order = append(order, d.Name)
	}
	return order
}

func (r *Registry) Remotes() []ProviderDescriptor {
	ret := make([]ProviderDescriptor, 0, len(r.remoteOrder))
	for _, name := range r.remoteOrder {
		ret = append(ret, r.remote[name])
	}
	return ret
}

func (r *Registry) Locals() []LocalModelDescriptor {
	ret := make([]LocalModelDescriptor, 0, len(r.localOrder))
	for _, name := range r.localOrder {
		ret = append(ret, r.local[name])
	}
	return ret
}
