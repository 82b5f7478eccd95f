package controller

import (
	"strconv"

	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Seeder             *service.CurriculumSeeder
	Populator          *service.LessonPopulator
	Events             *service.SystemEventService
	SentencesPerLesson int
}

func NewAdminController(seeder *service.CurriculumSeeder, populator *service.LessonPopulator, events *service.SystemEventService, sentencesPerLesson int) *AdminController {
	return &AdminController{
		Seeder:             seeder,
		Populator:          populator,
		Events:             events,
		SentencesPerLesson: sentencesPerLesson,
	}
}

// @Summary Seed the curriculum
// @Description Creates the fixed tracks and lessons when no track exists yet.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/curriculum/seed [post]
func (c *AdminController) Seed(ctx *gin.Context) {
	seeded, err := c.Seeder.SeedIfEmpty(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"seeded": seeded})
}

type populateRequest struct {
	Count int `json:"count"`
	service.PopulateOverrides
}

// @Summary Generate sentences for a lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body populateRequest false "Count and optional overrides"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/admin/lessons/{id}/populate [post]
func (c *AdminController) PopulateLesson(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req populateRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if req.Count == 0 {
		req.Count = c.SentencesPerLesson
	}

	generated, err := c.Populator.PopulateLesson(ctx.Request.Context(), lessonID, req.Count, req.PopulateOverrides)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"generated": generated})
}

type generateTrackRequest struct {
	PerLesson int `json:"perLesson"`
}

// @Summary Generate sentences for every lesson of a track
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Track ID"
// @Param request body generateTrackRequest false "Sentences per lesson"
// @Success 200 {object} util.Response
// @Router /api/admin/tracks/{id}/generate [post]
func (c *AdminController) GenerateTrack(ctx *gin.Context) {
	trackID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req generateTrackRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	if req.PerLesson == 0 {
		req.PerLesson = c.SentencesPerLesson
	}

	generated, err := c.Populator.GenerateTrack(ctx.Request.Context(), trackID, req.PerLesson)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"generated": generated})
}

type reorderRequest struct {
	SentenceIDs []uint `json:"sentenceIds" binding:"required"`
}

// @Summary Reorder a lesson's sentences
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body reorderRequest true "Every sentence id of the lesson in the new order"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id}/order [put]
func (c *AdminController) ReorderLesson(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sentences, err := c.Populator.ReorderLesson(ctx.Request.Context(), lessonID, req.SentenceIDs)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sentences)
}

// @Summary Remove a sentence from a lesson
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param sentenceId path int true "Sentence ID"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id}/sentences/{sentenceId} [delete]
func (c *AdminController) RemoveLessonSentence(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	sentenceID, err := util.ParseID("sentenceId", ctx.Param("sentenceId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.Populator.RemoveSentence(ctx.Request.Context(), lessonID, sentenceID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List recent system events
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param level query string false "info, warn or error"
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} util.Response
// @Router /api/admin/events [get]
func (c *AdminController) ListEvents(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	events, err := c.Events.ListRecent(ctx.Request.Context(), ctx.Query("level"), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, events)
}
