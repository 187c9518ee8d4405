package main

import (
	"net/http"

	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/SrZeh/get-useapp-sub002/src/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func notificationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/notifications", func(ctx *gin.Context) {
			var body types.CreateNotificationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNotification(&body)
			if err != nil {
				respondRejection(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/notifications", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			data, err := utils.ListNotifications(userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/notifications/counters", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			counters, err := utils.GetCounters(userId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": counters})
		}).
		PATCH("/notifications/:id/read", func(ctx *gin.Context) {
			var params struct {
				ID string `uri:"id" binding:"required,uuid"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			id, err := uuid.Parse(params.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.MarkNotificationRead(userId, id); err != nil {
				respondRejection(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
