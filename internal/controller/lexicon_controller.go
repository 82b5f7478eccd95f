package controller

import (
	"spanish_learning_backend/internal/lexicon"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LexiconController struct {
	Tables *lexicon.Tables
}

func NewLexiconController(tables *lexicon.Tables) *LexiconController {
	return &LexiconController{Tables: tables}
}

// @Summary Closed-class word tables
// @Description The word lists and gloss corrections used to normalize word analyses.
// @Tags lexicon
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/lexicon [get]
func (c *LexiconController) Get(ctx *gin.Context) {
	util.Success(ctx, c.Tables)
}
