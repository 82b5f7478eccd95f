package controller

import (
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SentenceController struct {
	Generator       *service.SentenceGenerator
	SentenceService *service.SentenceService
}

func NewSentenceController(generator *service.SentenceGenerator, sentenceService *service.SentenceService) *SentenceController {
	return &SentenceController{Generator: generator, SentenceService: sentenceService}
}

// @Summary Generate a practice sentence
// @Description Generates one sentence with its word-by-word analysis. Nothing is stored.
// @Tags sentences
// @Accept json
// @Produce json
// @Param request body service.GenerateParams false "Generation parameters"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/sentences/generate [post]
func (c *SentenceController) Generate(ctx *gin.Context) {
	var params service.GenerateParams
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&params); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	sentence, err := c.Generator.Generate(ctx.Request.Context(), params)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sentence)
}

// @Summary Get a sentence
// @Tags sentences
// @Produce json
// @Param id path int true "Sentence ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sentences/{id} [get]
func (c *SentenceController) Get(ctx *gin.Context) {
	id, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	sentence, err := c.SentenceService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sentence)
}

// @Summary Edit a sentence
// @Description A new Spanish text is re-analyzed word by word.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sentence ID"
// @Param request body service.SentenceUpdate true "Fields to change"
// @Success 200 {object} util.Response
// @Router /api/admin/sentences/{id} [put]
func (c *SentenceController) Update(ctx *gin.Context) {
	id, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req service.SentenceUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sentence, err := c.SentenceService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sentence)
}

// @Summary Delete a sentence
// @Description Removes the sentence from every lesson.
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Sentence ID"
// @Success 200 {object} util.Response
// @Router /api/admin/sentences/{id} [delete]
func (c *SentenceController) Delete(ctx *gin.Context) {
	id, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.SentenceService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
