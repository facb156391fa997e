package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/request"
	"github.com/reusedev/cutout-hub/internal/service/http/handler/response"
)

func CompressPDF(c *gin.Context) {
	form := request.CompressPDF{}
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := form.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamErrorWithMessage(err.Error()))
		return
	}
	doc, err := readFile(form.File, deps.MaxPDFSize)
	if err != nil {
		logs.Logger.Err(err).Msg("read upload failed")
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if deps.MaxPDFSize > 0 && int64(len(doc)) > deps.MaxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, response.ParamErrorWithMessage("file too large"))
		return
	}
	outcome, err := deps.Compressor.Compress(c.Request.Context(), doc, form.Options())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	if form.Raw {
		c.Data(http.StatusOK, "application/pdf", outcome.Output)
		return
	}
	view := response.NewCompression(len(doc), outcome)
	view.URL = store(c.Request.Context(), outcome.Output)
	c.JSON(http.StatusOK, response.SuccessWithData(view))
}
