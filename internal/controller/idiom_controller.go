package controller

import (
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type IdiomController struct {
	IdiomService *service.IdiomService
}

func NewIdiomController(idiomService *service.IdiomService) *IdiomController {
	return &IdiomController{IdiomService: idiomService}
}

// @Summary Generate an idiom
// @Tags idioms
// @Accept json
// @Produce json
// @Param request body service.IdiomParams false "Theme and level"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/idioms/generate [post]
func (c *IdiomController) Generate(ctx *gin.Context) {
	var params service.IdiomParams
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&params); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	idiom, err := c.IdiomService.Generate(ctx.Request.Context(), params)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, idiom)
}
