package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/request"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/response"
	"github.com/reusedev/cutout-hub/tools"
)

func RemoveBackground(c *gin.Context) {
	form := request.RemoveBackground{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	img, err := readFile(form.Image, deps.MaxInputSize)
	if err != nil {
		logs.Logger.Err(err).Msg("read upload failed")
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	req := cutout.Request{Image: img, Options: form.Options()}
	var res cutout.Result
	if form.Provider != "" {
		res, err = deps.Orchestrator.RemoveWithService(c.Request.Context(), form.Provider, req)
	} else {
		res, err = deps.Orchestrator.AutoRemove(c.Request.Context(), req, remover.Plan{Order: form.OrderList()})
	}
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	if form.Raw {
		c.Header("X-Provider", res.Provider)
		c.Data(http.StatusOK, res.ContentType, res.Output)
		return
	}
	view := response.NewRemoval(res)
	view.URL = store(c.Request.Context(), res.Output)
	c.JSON(http.StatusOK, response.SuccessWithData(view))
}

func BatchRemove(c *gin.Context) {
	form, reqs, ok := bindBatch(c)
	if !ok {
		return
	}
	outcome := deps.Batcher.ProcessBatch(c.Request.Context(), reqs, form.Concurrency, remover.Plan{Order: request.SplitOrder(form.Order)})
	c.JSON(http.StatusOK, response.SuccessWithData(response.NewBatch(outcome)))
}

func bindBatch(c *gin.Context) (request.BatchRemove, []cutout.Request, bool) {
	form := request.BatchRemove{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return form, nil, false
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return form, nil, false
	}
	reqs := make([]cutout.Request, 0, len(form.Images))
	for _, fh := range form.Images {
		img, err := readFile(fh, deps.MaxInputSize)
		if err != nil {
			logs.Logger.Err(err).Str("file", fh.Filename).Msg("read upload failed")
			c.JSON(http.StatusBadRequest, response.ParamError)
			return form, nil, false
		}
		reqs = append(reqs, cutout.Request{Image: img, Options: form.Options()})
	}
	return form, reqs, true
}

func ReplaceBackground(c *gin.Context) {
	form := request.ReplaceBackground{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	fg, err := readFile(form.Foreground, deps.MaxInputSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	var bg []byte
	if form.Background != nil {
		bg, err = readFile(form.Background, deps.MaxInputSize)
	} else {
		bg, err = tools.GetOnlineImage(c.Request.Context(), form.BackgroundURL, deps.MaxInputSize)
	}
	if err != nil {
		logs.Logger.Err(err).Msg("read background failed")
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage("background unavailable"))
		return
	}
	res, err := deps.Compositor.CompositeOntoBackground(c.Request.Context(),
		cutout.Request{Image: fg},
		bg,
		remover.CompositeOptions{
			Format:  form.Format,
			Quality: form.Quality,
			Plan:    remover.Plan{Order: request.SplitOrder(form.Order)},
		})
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	if form.Raw {
		c.Header("X-Provider", res.Provider)
		c.Data(http.StatusOK, res.ContentType, res.Output)
		return
	}
	view := response.NewComposite(res)
	view.URL = store(c.Request.Context(), res.Output)
	c.JSON(http.StatusOK, response.SuccessWithData(view))
}
