package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/dao"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/request"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/response"
)

func ListProviders(c *gin.Context) {
	registry := deps.Orchestrator.Registry()
	banned := deps.Bans.Snapshot()
	ret := response.Providers{Order: deps.Orchestrator.Order(remover.Plan{})}
	for _, d := range registry.Locals() {
		ret.Providers = append(ret.Providers, response.Provider{
			Name:        d.Name,
			Kind:        cutout.KindLocal.String(),
			Configured:  true,
			Description: d.Description,
			WeightSize:  d.WeightSize,
		})
	}
	for _, d := range registry.Remotes() {
		p := response.Provider{
			Name:         d.Name,
			Kind:         cutout.KindRemote.String(),
			Configured:   d.Configured(),
			CostPerImage: d.CostPerImage,
		}
		if until, ok := banned[d.Name]; ok {
			p.BannedUntil = &until
		}
		ret.Providers = append(ret.Providers, p)
	}
	c.JSON(http.StatusOK, response.SuccessWithData(ret))
}

func ListHistory(c *gin.Context) {
	if !deps.HistoryEnabled {
		c.JSON(http.StatusNotFound, response.HistoryDisabled)
		return
	}
	form := request.HistoryQuery{}
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	form.FullWithDefault()
	records, err := dao.RecentProviderInvokeHistory(form.Provider, form.Limit)
	if err != nil {
		logs.Logger.Err(err).Msg("query history failed")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(records))
}
