package controller

import (
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary Get the caller's progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.ProgressService.GetSummary(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

type lessonProgressRequest struct {
	Progress  *int  `json:"progress" binding:"required"`
	Completed *bool `json:"completed"`
}

// @Summary Record lesson progress
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body lessonProgressRequest true "Progress 0-100 and optional completion flag"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/progress/lessons/{id} [put]
func (c *ProgressController) UpdateLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req lessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.ProgressService.RecordLessonProgress(ctx.Request.Context(), user.UserID, lessonID, *req.Progress, req.Completed)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, row)
}

type attemptRequest struct {
	SentenceID uint   `json:"sentenceId" binding:"required"`
	Correct    bool   `json:"correct"`
	Answer     string `json:"answer"`
}

// @Summary Record an exercise attempt
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body attemptRequest true "Attempt"
// @Success 200 {object} util.Response
// @Router /api/progress/attempts [post]
func (c *ProgressController) RecordAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req attemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.RecordExerciseAttempt(ctx.Request.Context(), user.UserID, req.SentenceID, req.Correct, req.Answer)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

type wordsLearnedRequest struct {
	Words int `json:"words" binding:"required"`
}

// @Summary Add to the learned-words counter
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body wordsLearnedRequest true "Words learned"
// @Success 200 {object} util.Response
// @Router /api/progress/words [post]
func (c *ProgressController) AddWords(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req wordsLearnedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.AddWordsLearned(ctx.Request.Context(), user.UserID, req.Words)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
