package controller

import (
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ConversationController struct {
	ConversationService *service.ConversationService
}

func NewConversationController(conversationService *service.ConversationService) *ConversationController {
	return &ConversationController{ConversationService: conversationService}
}

// @Summary Reply to a learner message with corrections
// @Tags conversation
// @Accept json
// @Produce json
// @Param request body service.ConversationRequest true "Learner message and history"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/conversation/feedback [post]
func (c *ConversationController) Feedback(ctx *gin.Context) {
	var req service.ConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.ConversationService.Feedback(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// @Summary Stream the conversation partner's reply
// @Description Server-sent events: "message" per chunk, then "error" if any, then "end".
// @Tags conversation
// @Accept json
// @Produce text/event-stream
// @Param request body service.ConversationRequest true "Learner message and history"
// @Router /api/conversation/stream [post]
func (c *ConversationController) Stream(ctx *gin.Context) {
	var req service.ConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, errChan, err := c.ConversationService.Stream(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}
