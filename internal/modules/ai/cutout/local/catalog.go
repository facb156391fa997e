package local

import (
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
)

type preset struct {
	desc      cutout.LocalModelDescriptor
	tolerance uint8
}

var presets = map[consts.LocalModel]preset{
	consts.U2Net: {
		desc:      cutout.LocalModelDescriptor{Name: consts.U2Net.String(), Description: "general purpose salient object segmentation", WeightSize: "176MB"},
		tolerance: 40,
	},
	consts.U2NetP: {
		desc:      cutout.LocalModelDescriptor{Name: consts.U2NetP.String(), Description: "lightweight variant, coarser edges", WeightSize: "4.7MB"},
		tolerance: 56,
	},
	consts.U2NetHumanSeg: {
		desc:      cutout.LocalModelDescriptor{Name: consts.U2NetHumanSeg.String(), Description: "tuned for portraits", WeightSize: "176MB"},
		tolerance: 32,
	},
}

var catalogOrder = []consts.LocalModel{consts.U2Net, consts.U2NetP, consts.U2NetHumanSeg}

// Catalog returns the descriptors of the named models, or all of them when names is empty.
// Unknown names are ignored.
func Catalog(names []string) []cutout.LocalModelDescriptor {
	if len(names) == 0 {
		ret := make([]cutout.LocalModelDescriptor, 0, len(catalogOrder))
		for _, m := range catalogOrder {
			ret = append(ret, presets[m].desc)
		}
		return ret
	}
	var ret []cutout.LocalModelDescriptor
	for _, name := range names {
		if p, ok := presets[consts.LocalModel(name)]; ok {
			ret = append(ret, p.desc)
		}
	}
	return ret
}
