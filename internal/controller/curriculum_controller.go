package controller

import (
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// @Summary List curriculum tracks
// @Tags curriculum
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/curriculum/tracks [get]
func (c *CurriculumController) ListTracks(ctx *gin.Context) {
	tracks, err := c.CurriculumService.ListTracks(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tracks)
}

// @Summary List the lessons of a track
// @Tags curriculum
// @Produce json
// @Param id path int true "Track ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/curriculum/tracks/{id}/lessons [get]
func (c *CurriculumController) ListLessons(ctx *gin.Context) {
	trackID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	lessons, err := c.CurriculumService.ListLessons(ctx.Request.Context(), trackID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// @Summary Get a lesson
// @Tags curriculum
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/curriculum/lessons/{id} [get]
func (c *CurriculumController) GetLesson(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	lesson, err := c.CurriculumService.GetLesson(ctx.Request.Context(), lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary List a lesson's sentences in order
// @Tags curriculum
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/curriculum/lessons/{id}/sentences [get]
func (c *CurriculumController) LessonSentences(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	sentences, err := c.CurriculumService.LessonSentences(ctx.Request.Context(), lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sentences)
}
