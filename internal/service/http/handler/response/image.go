package response

import (
	"encoding/base64"
	"time"

	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
)

type Removal struct {
	Provider    string  `json:"provider"`
	ContentType string  `json:"content_type"`
	Cost        float64 `json:"cost"`
	Note        string  `json:"note,omitempty"`
	Base64      string  `json:"base64,omitempty"`
	URL         string  `json:"url,omitempty"`
}

func NewRemoval(r cutout.Result) Removal {
	return Removal{
		Provider:    r.Provider,
		ContentType: r.ContentType,
		Cost:        r.Cost,
		Note:        r.Note,
		Base64:      base64.StdEncoding.EncodeToString(r.Output),
	}
}

type BatchItem struct {
	Index  int                `json:"index"`
	Result *Removal           `json:"result,omitempty"`
	Error  *remover.ItemError `json:"error,omitempty"`
}

type Batch struct {
	Total         int         `json:"total"`
	Successful    int         `json:"successful"`
	Failed        int         `json:"failed"`
	EstimatedCost float64     `json:"estimated_cost"`
	Items         []BatchItem `json:"items"`
}

func NewBatch(o remover.BatchOutcome) Batch {
	ret := Batch{
		Total:         o.Total,
		Successful:    o.Successful,
		Failed:        o.Failed,
		EstimatedCost: o.EstimatedCost,
		Items:         make([]BatchItem, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		v := BatchItem{Index: item.Index, Error: item.Error}
		if item.Result != nil {
			r := NewRemoval(*item.Result)
			v.Result = &r
		}
		ret.Items = append(ret.Items, v)
	}
	return ret
}

type Composite struct {
	Provider    string  `json:"provider"`
	ContentType string  `json:"content_type"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Cost        float64 `json:"cost"`
	Base64      string  `json:"base64,omitempty"`
	URL         string  `json:"url,omitempty"`
}

func NewComposite(r remover.CompositeResult) Composite {
	return Composite{
		Provider:    r.Provider,
		ContentType: r.ContentType,
		Width:       r.Width,
		Height:      r.Height,
		Cost:        r.Cost,
		Base64:      base64.StdEncoding.EncodeToString(r.Output),
	}
}

type Provider struct {
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Configured   bool       `json:"configured"`
	CostPerImage float64    `json:"cost_per_image"`
	Description  string     `json:"description,omitempty"`
	WeightSize   string     `json:"weight_size,omitempty"`
	BannedUntil  *time.Time `json:"banned_until,omitempty"`
}

type Providers struct {
	Order     []string   `json:"order"`
	Providers []Provider `json:"providers"`
}
